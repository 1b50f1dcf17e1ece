package social

import "encoding/json"

// CallbackState is the JSON document some providers round trip through the
// OAuth state parameter. Only next is meaningful to us.
type CallbackState struct {
	Next string `json:"next"`
}

// DecodeState parses a state query parameter. A missing or unparseable state
// is not an error, it just carries no redirect hint.
func DecodeState(raw string) *CallbackState {
	if raw == "" {
		return nil
	}

	state := &CallbackState{}
	if err := json.Unmarshal([]byte(raw), state); err != nil {
		return nil
	}

	return state
}

// EncodeState serializes the state document for the authorize URL.
func EncodeState(state *CallbackState) (string, error) {
	if state == nil {
		state = &CallbackState{}
	}

	out, err := json.Marshal(state)
	if err != nil {
		return "", err
	}

	return string(out), nil
}

// ResolveNext picks the post-login client path: the state document wins over
// the bare next query parameter, and "/" is the fallback.
func ResolveNext(stateParam, nextParam string) string {
	if state := DecodeState(stateParam); state != nil && state.Next != "" {
		return state.Next
	}

	if nextParam != "" {
		return nextParam
	}

	return "/"
}
