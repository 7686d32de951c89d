package chat

import (
	"fmt"

	"github.com/atotto/clipboard"
)

func copyToClipboard(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard not available (install xclip or xsel)")
	}
	return clipboard.WriteAll(text)
}
