package types

import "github.com/artisanmarket/storefront/pkg/enums"

// Notice is a user-facing message raised while handling a request.
type Notice struct {
	Level   enums.NoticeLevel `json:"level"`
	Message string            `json:"message"`
}

type SuccessEnvelope struct {
	Data    any      `json:"data"`
	Notices []Notice `json:"notices,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error   APIError `json:"error"`
	Notices []Notice `json:"notices,omitempty"`
}
