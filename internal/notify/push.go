package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

// PushSender posts notifications to the Expo push service.
type PushSender struct {
	url    string
	client *http.Client
}

func NewPushSender(url string, client *http.Client) *PushSender {
	if client == nil {
		client = http.DefaultClient
	}
	return &PushSender{url: url, client: client}
}

type expoMessage struct {
	To    string `json:"to"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *PushSender) Send(ctx context.Context, token string, msg Message) error {
	payload, err := json.Marshal(expoMessage{To: token, Title: msg.Subject, Body: msg.Body})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("expo status %d: %s", resp.StatusCode, body)
	}
	log.Printf("notify: push sent: %d %s", resp.StatusCode, body)
	return nil
}
