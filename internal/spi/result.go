// internal/spi/result.go

package spi

// Status is the caller-visible outcome of an exchange.
type Status int

const (
	StatusSuccess Status = iota
	StatusTimeout
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusTimeout:
		return "timeout"
	default:
		return "error"
	}
}

// MarshalText renders the status as its lowercase name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Kind classifies why an exchange did not succeed.
type Kind int

const (
	KindNone Kind = iota
	KindNotFound
	KindPermission
	KindProtocol
	KindTimeout
	KindIO
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNotFound:
		return "not_found"
	case KindPermission:
		return "permission_denied"
	case KindProtocol:
		return "protocol"
	case KindTimeout:
		return "timeout"
	case KindIO:
		return "io"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Caller-visible messages.
const (
	MsgSuccess       = "command sent successfully"
	MsgTimeout       = "no response received within timeout"
	MsgNoCommand     = "no command provided"
	MsgInvalidFormat = "invalid command format"
	MsgDeviceMissing = "device does not exist"
	MsgPermission    = "permission denied"
	MsgCancelled     = "command cancelled"
)

// Result is the outcome of one SendCommand call.
// Response is empty unless Status is StatusSuccess.
type Result struct {
	Status   Status `json:"status"`
	Kind     Kind   `json:"kind"`
	Message  string `json:"message"`
	Response string `json:"response,omitempty"`

	// Err is the underlying cause for error results. Not serialized.
	Err error `json:"-"`
}

// OK reports a successful exchange.
func (r Result) OK() bool { return r.Status == StatusSuccess }

func success(response string) Result {
	return Result{Status: StatusSuccess, Kind: KindNone, Message: MsgSuccess, Response: response}
}

func timeout() Result {
	return Result{Status: StatusTimeout, Kind: KindTimeout, Message: MsgTimeout}
}

func failure(kind Kind, msg string, err error) Result {
	return Result{Status: StatusError, Kind: kind, Message: msg, Err: err}
}
