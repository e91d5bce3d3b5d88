package session

const (
	FlashError   = "error"
	FlashInfo    = "info"
	FlashSuccess = "success"
	FlashWarning = "warning"
)

// A Flash is a message shown once, on the next page a session's visitor loads.
type Flash struct {
	Class string `json:"class"`
	Msg   string `json:"msg"`
}
