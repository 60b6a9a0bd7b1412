package server

import (
	"encoding/json"
	"fmt"

	"parley/internal/protocol"
)

func decodeHandshakeRequest(payload interface{}) (protocol.HandshakeRequest, error) {
	var req protocol.HandshakeRequest
	err := decodePayload(payload, &req)
	return req, err
}

func decodeChatMessage(payload interface{}) (protocol.ChatMessage, error) {
	var msg protocol.ChatMessage
	err := decodePayload(payload, &msg)
	return msg, err
}

func decodeWhisperRequest(payload interface{}) (protocol.WhisperRequest, error) {
	var req protocol.WhisperRequest
	err := decodePayload(payload, &req)
	return req, err
}

// decodeRoomRequest tolerates a missing payload: an absent room means the
// default room.
func decodeRoomRequest(payload interface{}) (protocol.RoomRequest, error) {
	var req protocol.RoomRequest
	if payload == nil {
		return req, nil
	}
	err := decodePayload(payload, &req)
	return req, err
}

func decodeRenameRequest(payload interface{}) (protocol.RenameRequest, error) {
	var req protocol.RenameRequest
	err := decodePayload(payload, &req)
	return req, err
}

// decodePayload round-trips the generically decoded payload into its
// concrete struct.
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
