package executor

import "strings"

// TrimNewlines strips any run of \r and \n from both ends of s.
func TrimNewlines(s string) string {
	return strings.Trim(s, "\r\n")
}
