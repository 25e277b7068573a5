package notify

import (
	"fmt"
	"strings"

	"boardrelay/internal/domain"
)

const (
	descriptionLimit = 500
	snippetLimit     = 180
)

// truncate keeps s under limit bytes, ellipsis-truncating at limit-3.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}

// Compose renders the delivery-ready message for one recipient. It is
// deterministic, does no I/O and never fails: missing fields degrade to
// empty substrings. Agent recipients of task.created/task.assigned get a
// structured action script; everyone else gets a short summary.
func Compose(nc domain.NotifyContext, rcpt domain.Employee, baseURL string) string {
	t := nc.Task
	base := fmt.Sprintf("Task #%d: %s", t.ID, t.Title)
	if t.ID == 0 {
		base = "Task: " + t.Title
	}

	if (nc.Event == domain.EventTaskCreated || nc.Event == domain.EventTaskAssigned) &&
		rcpt.Type == domain.EmployeeTypeAgent {
		return agentScript(base, baseURL, t, rcpt)
	}

	switch nc.Event {
	case domain.EventTaskAssigned:
		return fmt.Sprintf(
			"Assigned: %s.\nWork ONE task only; update the board with a comment when you make progress.",
			base)

	case domain.EventCommentCreated:
		snippet := ""
		if nc.Comment != nil && nc.Comment.Body != "" {
			s := strings.ReplaceAll(strings.TrimSpace(nc.Comment.Body), "\n", " ")
			snippet = "\nComment: " + truncate(s, snippetLimit)
		}
		return fmt.Sprintf(
			"New comment on %s.%s\nWork ONE task only; reply/update on the board.",
			base, snippet)

	case domain.EventStatusChanged:
		return fmt.Sprintf(
			"Status changed on %s -> %s.\nWork ONE task only; update the board with next step.",
			base, t.Status)

	case domain.EventTaskCreated:
		return fmt.Sprintf(
			"New task created: %s.\nWork ONE task only; add acceptance criteria / next step on the board.",
			base)
	}

	return fmt.Sprintf("Update on %s.\nWork ONE task only; update the board.", base)
}

// agentScript is the one branch with templated command text: explicit ordered
// steps the agent executes against the public API.
func agentScript(base, baseURL string, t domain.TaskSnapshot, rcpt domain.Employee) string {
	desc := truncate(strings.TrimSpace(t.Description), descriptionLimit)
	descBlock := ""
	if desc != "" {
		descBlock = "\n\nDescription:\n" + desc
	}

	return fmt.Sprintf(
		"%s\n\n"+
			"Set BASE=%s\n\n"+
			"You are the assignee. Start NOW (use the exec tool to run these curl commands):\n"+
			"1) curl -sS -X PATCH $BASE/tasks/%d -H 'X-Actor-Employee-Id: %d' -H 'Content-Type: application/json' -d '{\"status\":\"in_progress\"}'\n"+
			"2) curl -sS -X POST $BASE/task-comments -H 'X-Actor-Employee-Id: %d' -H 'Content-Type: application/json' -d '{\"task_id\":%d,\"body\":\"Plan: ... Next: ...\"}'\n"+
			"3) Do the work\n"+
			"4) Post progress updates via POST $BASE/task-comments (same headers)\n"+
			"5) When complete: curl -sS -X PATCH $BASE/tasks/%d -H 'X-Actor-Employee-Id: %d' -H 'Content-Type: application/json' -d '{\"status\":\"done\"}' and post a final summary comment"+
			"%s",
		base, baseURL, t.ID, rcpt.ID, rcpt.ID, t.ID, t.ID, rcpt.ID, descBlock)
}
