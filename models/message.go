package models

import (
	"encoding/json"
	"errors"
)

// MessageType tags every envelope exchanged over the websocket.
type MessageType string

const (
	TypeNewUser        MessageType = "NEW_USER"
	TypeUserCreated    MessageType = "USER_CREATED"
	TypeCreateRoom     MessageType = "CREATE_ROOM"
	TypeRoomCreated    MessageType = "ROOM_CREATED"
	TypeJoinRoom       MessageType = "JOIN_ROOM"
	TypeRoomJoined     MessageType = "ROOM_JOINED"
	TypeNewQuestion    MessageType = "NEW_QUESTION"
	TypeAnswer         MessageType = "ANSWER"
	TypeGetRooms       MessageType = "GET_ROOMS"
	TypeStart          MessageType = "START"
	TypeEnd            MessageType = "END"
	TypeAnswerResponse MessageType = "ANSWER_RESPONSE"
	TypeScore          MessageType = "SCORE"
	TypeUserLeft       MessageType = "USER_LEFT"
	TypeUserJoin       MessageType = "USER_JOIN"
	TypeNewRoom        MessageType = "NEW_ROOM"
	TypeTopScore       MessageType = "TOP_SCORE"
	TypeLeaveRoom      MessageType = "LEAVE_ROOM"
	TypeDeleteRoom     MessageType = "DELETE_ROOM"
	TypeWrongQuestions MessageType = "WRONG_QUESTIONS"
	TypePing           MessageType = "PING"
	TypePong           MessageType = "PONG"
)

// Message is the wire envelope. Outbound messages carry a typed payload in
// Data; inbound messages keep the payload raw until the dispatcher knows the
// type and decodes it with DecodeData.
type Message struct {
	Type MessageType `json:"type"`
	Data any         `json:"data,omitempty"`
}

func (m *Message) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type MessageType     `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Type == "" {
		return errors.New("message without type")
	}
	m.Type = raw.Type
	if len(raw.Data) > 0 {
		m.Data = json.RawMessage(raw.Data)
	} else {
		m.Data = nil
	}
	return nil
}

// DecodeData unmarshals an inbound payload into v.
func (m Message) DecodeData(v any) error {
	raw, ok := m.Data.(json.RawMessage)
	if !ok {
		return errors.New("message has no raw payload")
	}
	return json.Unmarshal(raw, v)
}
