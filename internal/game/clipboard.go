package game

import "github.com/atotto/clipboard"

// copyToClipboard places text on the system clipboard.
func copyToClipboard(text string) error {
	if text == "" {
		text = " "
	}
	return clipboard.WriteAll(text)
}
