package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"school-management-api/models"
)

// Unlock requests and rejections travel over the generic notifications table.
// The workflow state they refer to lives in unlock_requests; the bracketed
// title tags below are the plain-text convention that correlates a
// notification back to its evaluation and requester. Tags may appear in any
// order and unrelated bracketed text in the body is never consumed.

const (
	UnlockRequestPrefix  = "[UNLOCK_REQUEST]"
	UnlockRejectedPrefix = "[UNLOCK_REJECTED]"

	urlLinePrefix = "URL: "
)

var (
	evalIDTagPattern   = regexp.MustCompile(`\[EVAL_ID:(\d+)\]`)
	userIDTagPattern   = regexp.MustCompile(`\[USER_ID:(\d+)\]`)
	evalNameTagPattern = regexp.MustCompile(`\[EVAL_NAME:([^\]]*)\]`)
	bracketTagPattern  = regexp.MustCompile(`\[[^\]]*\]`)
	rejectedIDPattern  = regexp.MustCompile(`#(\d+)`)
)

// EvaluationEditPath is the deep link embedded in unlock notifications.
func EvaluationEditPath(evaluationID int) string {
	return fmt.Sprintf("/evaluations/edit/%d", evaluationID)
}

// tagSafe makes a free-text value safe to embed inside a bracketed title tag.
// Square brackets would close the tag early and shift the remainder into the
// display title, so they are swapped for parentheses.
func tagSafe(value string) string {
	value = strings.ReplaceAll(value, "[", "(")
	return strings.ReplaceAll(value, "]", ")")
}

// BuildUnlockRequestMessage renders the notification sent to every
// administrator when a teacher asks to re-open a locked evaluation.
func BuildUnlockRequestMessage(ev models.Evaluation, requester models.User, course models.Course, comment string) (title, body string) {
	title = fmt.Sprintf("%s[EVAL_ID:%d][USER_ID:%d][EVAL_NAME:%s] Solicitud de Edición",
		UnlockRequestPrefix, ev.EvaluationID, requester.UserID, tagSafe(ev.Title))

	body = fmt.Sprintf("El profesor %s solicita permiso para editar la evaluación \"%s\" del curso \"%s\".",
		requester.FullName(), ev.Title, course.CourseName)
	if comment = strings.TrimSpace(comment); comment != "" {
		body += "\n\nMotivo: " + comment
	}
	body += "\n\n" + urlLinePrefix + "#" + EvaluationEditPath(ev.EvaluationID)
	return title, body
}

// BuildUnlockRejectionMessage renders the notification sent back to the
// requesting teacher when an administrator turns the request down.
func BuildUnlockRejectionMessage(ev models.Evaluation, reason string) (title, body string) {
	title = fmt.Sprintf("%s Solicitud Rechazada para Evaluación #%d", UnlockRejectedPrefix, ev.EvaluationID)

	body = fmt.Sprintf("Su solicitud para editar la evaluación \"%s\" fue rechazada.", ev.Title)
	if reason = strings.TrimSpace(reason); reason != "" {
		body += "\n\nMotivo: " + reason
	}
	return title, body
}

// BuildUnlockGrantedMessage renders the notification sent to the evaluation
// owner when an administrator grants the override, with a deep link back to
// the edit page.
func BuildUnlockGrantedMessage(ev models.Evaluation) (title, body string) {
	title = fmt.Sprintf("Evaluación Desbloqueada: %s", ev.Title)
	body = fmt.Sprintf("Un administrador habilitó la edición de la evaluación \"%s\". Ya puede realizar los cambios necesarios.", ev.Title)
	body += "\n\n" + urlLinePrefix + "#" + EvaluationEditPath(ev.EvaluationID)
	return title, body
}

// UnlockRequestInfo is the parsed, display-ready view of an unlock-request
// notification. Absent tags leave the corresponding pointer nil.
type UnlockRequestInfo struct {
	EvalID          *int   `json:"eval_id,omitempty"`
	RequesterUserID *int   `json:"requester_user_id,omitempty"`
	EvaluationName  string `json:"evaluation_name,omitempty"`
	DisplayTitle    string `json:"display_title"`
	DisplayBody     string `json:"display_body"`
	ActionLink      string `json:"action_link,omitempty"`
}

// ParseUnlockRequest recognizes an unlock-request notification. It returns
// ok=false unless the title starts with the [UNLOCK_REQUEST] prefix, in which
// case the caller must treat the notification as plain text. Each tag is
// extracted independently from the title; a malformed or missing tag leaves
// its field absent rather than failing the whole message.
func ParseUnlockRequest(title, message string) (UnlockRequestInfo, bool) {
	if !strings.HasPrefix(title, UnlockRequestPrefix) {
		return UnlockRequestInfo{}, false
	}

	info := UnlockRequestInfo{}
	if m := evalIDTagPattern.FindStringSubmatch(title); m != nil {
		if id, err := strconv.Atoi(m[1]); err == nil {
			info.EvalID = &id
		}
	}
	if m := userIDTagPattern.FindStringSubmatch(title); m != nil {
		if id, err := strconv.Atoi(m[1]); err == nil {
			info.RequesterUserID = &id
		}
	}
	if m := evalNameTagPattern.FindStringSubmatch(title); m != nil {
		info.EvaluationName = m[1]
	}

	info.DisplayTitle = strings.TrimSpace(bracketTagPattern.ReplaceAllString(title, ""))
	info.DisplayBody, info.ActionLink = splitActionLink(message)
	return info, true
}

// ParseUnlockRejection extracts the evaluation id from a rejection
// notification title. ok=false when the title is not a rejection.
func ParseUnlockRejection(title string) (evalID int, ok bool) {
	if !strings.HasPrefix(title, UnlockRejectedPrefix) {
		return 0, false
	}
	m := rejectedIDPattern.FindStringSubmatch(title)
	if m == nil {
		return 0, true
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, true
	}
	return id, true
}

// splitActionLink strips a trailing "URL: #<path>" line from a notification
// body. The URL line, when present, is always the last line; anything else,
// bracketed or not, stays in the displayed body untouched.
func splitActionLink(message string) (displayBody, actionLink string) {
	trimmed := strings.TrimRight(message, " \t\n")
	idx := strings.LastIndex(trimmed, "\n")
	lastLine := trimmed
	if idx >= 0 {
		lastLine = trimmed[idx+1:]
	}

	if !strings.HasPrefix(strings.TrimSpace(lastLine), urlLinePrefix) {
		return strings.TrimSpace(message), ""
	}

	link := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lastLine), urlLinePrefix))
	link = strings.TrimPrefix(link, "#")

	if idx < 0 {
		return "", link
	}
	return strings.TrimSpace(trimmed[:idx]), link
}
