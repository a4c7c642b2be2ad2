// Package protocol implements the line-based chat wire format.
//
// Every command and every server response is a single line of UTF-8 text
// terminated by a newline. Fields are separated by an ASCII space; the first
// field is the keyword that selects how the rest of the line is read.
package protocol

import "strings"

// Client command keywords.
const (
	KeywordLogin          = "login"
	KeywordPublicMessage  = "msg"
	KeywordPrivateMessage = "privmsg"
	KeywordUsers          = "users"
	KeywordHelp           = "help"
)

// Server response keywords. "msg", "privmsg" and "users" are shared with the
// command vocabulary.
const (
	KeywordLoginOK      = "loginok"
	KeywordLoginError   = "loginerr"
	KeywordCommandError = "cmderr"
	KeywordMessageError = "msgerror"
	KeywordMessageOK    = "msgok"
	KeywordSupported    = "supported"
)

// Separator separates fields on a wire line.
const Separator = " "

// splitFirst splits s on the first separator. ok is false when s has no
// separator, in which case rest is empty.
func splitFirst(s string) (head, rest string, ok bool) {
	return strings.Cut(s, Separator)
}

// splitFields splits a list payload on spaces, skipping empty fields.
func splitFields(s string) []string {
	return strings.Fields(s)
}

// validField reports whether s can be carried as one field of a wire line.
func validField(s string) bool {
	return !strings.ContainsAny(s, "\r\n")
}
