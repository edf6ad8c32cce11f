package main

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/miekg/dns"
)

// writeMessages writes each message in wire format, base64 encoded, one per line.
func writeMessages(w io.Writer, messages []*dns.Msg) error {
	for _, msg := range messages {
		wire, err := msg.Pack()
		if err != nil {
			return fmt.Errorf("can't pack message: %w", err)
		}
		if _, err := fmt.Fprintln(w, base64.StdEncoding.EncodeToString(wire)); err != nil {
			return err
		}
	}
	return nil
}

// readMessages reverses writeMessages. Blank lines and lines starting with # are ignored.
func readMessages(r io.Reader) ([]*dns.Msg, error) {
	messages := make([]*dns.Msg, 0)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), base64.StdEncoding.EncodedLen(dns.MaxMsgSize)+1)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		wire, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: can't decode message: %w", line, err)
		}

		msg := new(dns.Msg)
		if err := msg.Unpack(wire); err != nil {
			return nil, fmt.Errorf("line %d: can't unpack message: %w", line, err)
		}
		messages = append(messages, msg)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
