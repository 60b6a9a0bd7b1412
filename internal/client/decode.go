package client

import (
	"encoding/json"
	"fmt"

	"parley/internal/protocol"
)

func decodeChatMessage(payload interface{}) (protocol.ChatMessage, error) {
	var msg protocol.ChatMessage
	err := decodePayload(payload, &msg)
	return msg, err
}

func decodeConfirmPayload(payload interface{}) (protocol.ConfirmPayload, error) {
	var confirm protocol.ConfirmPayload
	if payload == nil {
		return confirm, nil
	}
	err := decodePayload(payload, &confirm)
	return confirm, err
}

func decodeDeniedPayload(payload interface{}) (protocol.DeniedPayload, error) {
	var denied protocol.DeniedPayload
	if payload == nil {
		return denied, nil
	}
	err := decodePayload(payload, &denied)
	return denied, err
}

func decodePayload(payload interface{}, out interface{}) error {
	if payload == nil {
		return fmt.Errorf("payload empty")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
