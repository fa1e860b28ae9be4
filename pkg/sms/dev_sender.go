package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DevSender implements Sender for local development. Messages are appended
// as JSON lines to a file instead of calling a gateway.
type DevSender struct {
	dir string
}

// NewDevSender creates a development SMS sender that logs messages to disk.
// The directory will be created if it doesn't exist.
func NewDevSender(dir string) Sender {
	return &DevSender{dir: dir}
}

type devMessage struct {
	Timestamp string `json:"timestamp"`
	SendTo    string `json:"send_to"`
	Message   string `json:"message"`
	Tag       string `json:"tag,omitempty"`
}

// SendSMS appends the message to sms.jsonl in the configured directory.
func (d *DevSender) SendSMS(ctx context.Context, params SendSMSParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %v", ErrFailedToSendSMS, err)
	}

	line, err := json.Marshal(devMessage{
		Timestamp: time.Now().Format(time.RFC3339),
		SendTo:    NormalizePhone(params.SendTo),
		Message:   params.Message,
		Tag:       params.Tag,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal message: %v", ErrFailedToSendSMS, err)
	}

	path := filepath.Join(d.dir, "sms.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: failed to open log file: %v", ErrFailedToSendSMS, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("%w: failed to write message: %v", ErrFailedToSendSMS, err)
	}

	return nil
}
