package services

import (
	"strings"
	"testing"
	"time"

	"school-management-api/models"
)

func protoEvaluation() models.Evaluation {
	return models.Evaluation{
		EvaluationID: 42,
		Title:        "Quiz 1",
		CourseID:     5,
		OwnerUserID:  7,
		EvalDate:     time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuildUnlockRequestMessage(t *testing.T) {
	requester := models.User{UserID: 7, UserFname: "Ana", UserLname: "García"}
	course := models.Course{CourseID: 5, CourseName: "Matemática 3°A"}

	title, body := BuildUnlockRequestMessage(protoEvaluation(), requester, course, "Error en la ponderación")

	wantTitle := "[UNLOCK_REQUEST][EVAL_ID:42][USER_ID:7][EVAL_NAME:Quiz 1] Solicitud de Edición"
	if title != wantTitle {
		t.Errorf("title = %q, want %q", title, wantTitle)
	}
	if !strings.Contains(body, "Ana García") || !strings.Contains(body, "\"Quiz 1\"") || !strings.Contains(body, "\"Matemática 3°A\"") {
		t.Errorf("body missing requester/evaluation/course: %q", body)
	}
	if !strings.Contains(body, "Motivo: Error en la ponderación") {
		t.Errorf("body missing comment: %q", body)
	}
	if !strings.HasSuffix(body, "URL: #/evaluations/edit/42") {
		t.Errorf("body should end with the deep-link line: %q", body)
	}
}

func TestBuildAndParseRoundTrip(t *testing.T) {
	requester := models.User{UserID: 7, UserFname: "Ana", UserLname: "García"}
	course := models.Course{CourseID: 5, CourseName: "Matemática 3°A"}

	title, body := BuildUnlockRequestMessage(protoEvaluation(), requester, course, "")
	info, ok := ParseUnlockRequest(title, body)
	if !ok {
		t.Fatal("built request did not parse as a request")
	}

	if info.EvalID == nil || *info.EvalID != 42 {
		t.Errorf("evalID = %v, want 42", info.EvalID)
	}
	if info.RequesterUserID == nil || *info.RequesterUserID != 7 {
		t.Errorf("requesterUserID = %v, want 7", info.RequesterUserID)
	}
	if info.EvaluationName != "Quiz 1" {
		t.Errorf("evaluationName = %q, want %q", info.EvaluationName, "Quiz 1")
	}
	if info.DisplayTitle != "Solicitud de Edición" {
		t.Errorf("displayTitle = %q", info.DisplayTitle)
	}
	if info.ActionLink != "/evaluations/edit/42" {
		t.Errorf("actionLink = %q, want /evaluations/edit/42", info.ActionLink)
	}
	if strings.Contains(info.DisplayBody, "URL:") {
		t.Errorf("displayBody still carries the URL line: %q", info.DisplayBody)
	}
}

func TestBuildUnlockRequestMessageBracketedTitle(t *testing.T) {
	requester := models.User{UserID: 7, UserFname: "Ana", UserLname: "García"}
	course := models.Course{CourseID: 5, CourseName: "Matemática 3°A"}

	// Brackets in the evaluation title would otherwise close the EVAL_NAME
	// tag early and bleed the remainder into the display title.
	ev := protoEvaluation()
	ev.Title = "Quiz [Unidad 1] Final"

	title, body := BuildUnlockRequestMessage(ev, requester, course, "")
	info, ok := ParseUnlockRequest(title, body)
	if !ok {
		t.Fatal("built request did not parse as a request")
	}
	if info.EvaluationName != "Quiz (Unidad 1) Final" {
		t.Errorf("evaluationName = %q, want %q", info.EvaluationName, "Quiz (Unidad 1) Final")
	}
	if info.DisplayTitle != "Solicitud de Edición" {
		t.Errorf("displayTitle = %q, want %q", info.DisplayTitle, "Solicitud de Edición")
	}
	if info.EvalID == nil || *info.EvalID != 42 {
		t.Errorf("evalID = %v, want 42", info.EvalID)
	}
	// The body keeps the title verbatim; only the tag is rewritten.
	if !strings.Contains(body, "\"Quiz [Unidad 1] Final\"") {
		t.Errorf("body should quote the original title: %q", body)
	}
}

func TestParseUnlockRequestTagOrderAndOmissions(t *testing.T) {
	// Tags in a scrambled order still extract.
	info, ok := ParseUnlockRequest("[UNLOCK_REQUEST][EVAL_NAME:Quiz 1][USER_ID:7][EVAL_ID:42] Solicitud de Edición", "cuerpo")
	if !ok {
		t.Fatal("scrambled tags were not recognized")
	}
	if info.EvalID == nil || *info.EvalID != 42 || info.RequesterUserID == nil || *info.RequesterUserID != 7 {
		t.Errorf("scrambled tags parsed wrong: %+v", info)
	}

	// A missing tag leaves its field absent instead of failing.
	info, ok = ParseUnlockRequest("[UNLOCK_REQUEST][USER_ID:7] Solicitud de Edición", "cuerpo")
	if !ok {
		t.Fatal("request with missing tag was not recognized")
	}
	if info.EvalID != nil {
		t.Errorf("evalID should be absent, got %v", *info.EvalID)
	}
	if info.RequesterUserID == nil || *info.RequesterUserID != 7 {
		t.Errorf("requesterUserID = %v, want 7", info.RequesterUserID)
	}
	if info.DisplayTitle != "Solicitud de Edición" {
		t.Errorf("displayTitle = %q", info.DisplayTitle)
	}
}

func TestParseUnlockRequestRejectsOtherTitles(t *testing.T) {
	titles := []string{
		"Recordatorio de pago",
		"[UNLOCK_REJECTED] Solicitud Rechazada para Evaluación #42",
		"Aviso [EVAL_ID:42] no relacionado", // bracket text without the prefix
		" [UNLOCK_REQUEST] con espacio inicial",
	}
	for _, title := range titles {
		if _, ok := ParseUnlockRequest(title, "cuerpo con [corchetes] sueltos"); ok {
			t.Errorf("ParseUnlockRequest(%q) should not be a request", title)
		}
	}
}

func TestParseUnlockRequestLeavesBodyBracketsAlone(t *testing.T) {
	body := "Revisar [sección 2] del examen.\n\nURL: #/evaluations/edit/42"
	info, ok := ParseUnlockRequest("[UNLOCK_REQUEST][EVAL_ID:42] Solicitud de Edición", body)
	if !ok {
		t.Fatal("not recognized")
	}
	if info.DisplayBody != "Revisar [sección 2] del examen." {
		t.Errorf("displayBody = %q", info.DisplayBody)
	}
	if info.ActionLink != "/evaluations/edit/42" {
		t.Errorf("actionLink = %q", info.ActionLink)
	}
}

func TestParseUnlockRequestWithoutURLLine(t *testing.T) {
	info, ok := ParseUnlockRequest("[UNLOCK_REQUEST][EVAL_ID:42] Solicitud de Edición", "Sin enlace.")
	if !ok {
		t.Fatal("not recognized")
	}
	if info.ActionLink != "" {
		t.Errorf("actionLink = %q, want empty", info.ActionLink)
	}
	if info.DisplayBody != "Sin enlace." {
		t.Errorf("displayBody = %q", info.DisplayBody)
	}
}

func TestBuildUnlockRejectionMessage(t *testing.T) {
	title, body := BuildUnlockRejectionMessage(protoEvaluation(), "Fuera de fecha")

	if title != "[UNLOCK_REJECTED] Solicitud Rechazada para Evaluación #42" {
		t.Errorf("title = %q", title)
	}
	if !strings.Contains(body, "\"Quiz 1\"") || !strings.Contains(body, "Motivo: Fuera de fecha") {
		t.Errorf("body = %q", body)
	}

	evalID, ok := ParseUnlockRejection(title)
	if !ok || evalID != 42 {
		t.Errorf("ParseUnlockRejection = (%d, %v), want (42, true)", evalID, ok)
	}
	if _, ok := ParseUnlockRejection("otra cosa"); ok {
		t.Error("non-rejection title should not parse")
	}
}

func TestBuildUnlockGrantedMessageHasDeepLink(t *testing.T) {
	_, body := BuildUnlockGrantedMessage(protoEvaluation())
	if !strings.HasSuffix(body, "URL: #/evaluations/edit/42") {
		t.Errorf("granted message missing deep link: %q", body)
	}
}
