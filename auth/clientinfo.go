package auth

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ClientInfo is the decoded client_info field of a token response.
type ClientInfo struct {
	UID  string `json:"uid"`
	UTID string `json:"utid"`
}

// HomeAccountID returns <uid>.<utid>.
func (c ClientInfo) HomeAccountID() string {
	return c.UID + "." + c.UTID
}

var segmentDecoder = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodeClientInfo decodes a base64url client_info value, with or without
// padding. Both uid and utid must be present.
func DecodeClientInfo(raw string) (ClientInfo, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ClientInfo{}, fmt.Errorf("%w: empty", ErrInvalidClientInfo)
	}

	data, err := segmentDecoder.DecodeSegment(raw)
	if err != nil {
		return ClientInfo{}, fmt.Errorf("%w: %v", ErrInvalidClientInfo, err)
	}

	var info ClientInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return ClientInfo{}, fmt.Errorf("%w: %v", ErrInvalidClientInfo, err)
	}
	if info.UID == "" || info.UTID == "" {
		return ClientInfo{}, fmt.Errorf("%w: uid and utid are required", ErrInvalidClientInfo)
	}
	return info, nil
}
