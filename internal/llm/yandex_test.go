package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestYandexTokenRefresh(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	calls := 0
	c := &YandexClient{
		refresh: func() (string, error) {
			calls++
			return fmt.Sprintf("tok-%d", calls), nil
		},
		now: func() time.Time { return now },
	}

	tok, err := c.token()
	if err != nil || tok != "tok-1" {
		t.Fatalf("first token: %q %v", tok, err)
	}
	now = now.Add(30 * time.Minute)
	if tok, _ := c.token(); tok != "tok-1" || calls != 1 {
		t.Fatalf("token should be cached, got %q after %d calls", tok, calls)
	}
	now = now.Add(iamTokenTTL)
	if tok, _ := c.token(); tok != "tok-2" {
		t.Fatalf("expired token should be refreshed, got %q", tok)
	}
}

func TestYandexRefreshError(t *testing.T) {
	boom := errors.New("iam down")
	c := &YandexClient{
		refresh: func() (string, error) { return "", boom },
		now:     time.Now,
	}
	if _, err := c.token(); !errors.Is(err, boom) {
		t.Fatalf("want wrapped refresh error, got %v", err)
	}
}

func TestYandexRejectsImages(t *testing.T) {
	c := &YandexClient{}
	_, err := c.Generate(context.Background(), []Message{{Role: "user", Images: []InlineImage{{MIMEType: "image/png", Data: []byte{1}}}}})
	if !errors.Is(err, ErrImagesUnsupported) {
		t.Fatalf("want ErrImagesUnsupported, got %v", err)
	}
}
