package enums

import "fmt"

// NoticeVariant controls how a user-facing notice is rendered.
type NoticeVariant string

const (
	NoticeVariantDefault     NoticeVariant = "default"
	NoticeVariantDestructive NoticeVariant = "destructive"
)

var validNoticeVariants = []NoticeVariant{
	NoticeVariantDefault,
	NoticeVariantDestructive,
}

// String implements fmt.Stringer.
func (v NoticeVariant) String() string {
	return string(v)
}

// IsValid reports whether the value is a known NoticeVariant.
func (v NoticeVariant) IsValid() bool {
	for _, candidate := range validNoticeVariants {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseNoticeVariant converts raw input into a NoticeVariant.
func ParseNoticeVariant(value string) (NoticeVariant, error) {
	for _, candidate := range validNoticeVariants {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notice variant %q", value)
}
