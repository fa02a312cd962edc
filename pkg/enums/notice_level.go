package enums

// NoticeLevel mirrors the toast variants the storefront renders.
type NoticeLevel string

const (
	NoticeLevelSuccess NoticeLevel = "success"
	NoticeLevelInfo    NoticeLevel = "info"
	NoticeLevelError   NoticeLevel = "error"
)

func (l NoticeLevel) String() string {
	return string(l)
}
