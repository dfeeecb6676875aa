package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxReplyBytes caps a collected reply; anything larger is treated as a failed call.
const MaxReplyBytes = 1 << 20

var (
	ErrImagesUnsupported = errors.New("provider does not accept images")
	ErrEmptyReply        = errors.New("model returned an empty reply")
	ErrReplyTooLarge     = errors.New("model reply exceeds size limit")
)

// InlineImage is raw image bytes sent alongside a message.
type InlineImage struct {
	MIMEType string
	Data     []byte
}

type Message struct {
	Role    string
	Content string
	Images  []InlineImage
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}

// Stream yields incremental text chunks; Recv returns io.EOF after the last one.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// StreamingClient is a Client that can also deliver its reply in chunks.
type StreamingClient interface {
	Client
	GenerateStream(ctx context.Context, messages []Message) (Stream, error)
}

// Collect returns the whole reply text. Streaming clients are read chunk by chunk into one
// buffer; any error mid-stream discards what was buffered so far.
func Collect(ctx context.Context, c Client, messages []Message) (string, error) {
	sc, ok := c.(StreamingClient)
	if !ok {
		resp, err := c.Generate(ctx, messages)
		if err != nil {
			return "", err
		}
		return checkReply(resp.Content)
	}

	stream, err := sc.GenerateStream(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("open stream: %w", err)
	}
	defer func(stream Stream) {
		_ = stream.Close()
	}(stream)

	var buf strings.Builder
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read stream: %w", err)
		}
		buf.WriteString(chunk)
		if buf.Len() > MaxReplyBytes {
			return "", ErrReplyTooLarge
		}
	}
	return checkReply(buf.String())
}

func checkReply(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", ErrEmptyReply
	}
	if len(s) > MaxReplyBytes {
		return "", ErrReplyTooLarge
	}
	return s, nil
}
