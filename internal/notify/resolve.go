package notify

import (
	"context"
	"strings"

	"boardrelay/internal/domain"
	"boardrelay/internal/ports"
)

// pmRoles are the member role strings treated as product-management for
// notification fan-out, matched case-insensitively.
var pmRoles = map[string]struct{}{
	"pm":              {},
	"product":         {},
	"product_manager": {},
	"manager":         {},
}

// Resolve maps one domain event to the set of employee ids to notify. Rules
// are additive per event kind; the actor is removed unconditionally at the
// end so nobody is notified of their own action. Unknown event kinds resolve
// to nobody.
func Resolve(ctx context.Context, dir ports.Directory, nc domain.NotifyContext) (map[int64]struct{}, error) {
	t := nc.Task
	recipients := map[int64]struct{}{}
	add := func(id int64) {
		if id != 0 {
			recipients[id] = struct{}{}
		}
	}

	switch nc.Event {
	case domain.EventTaskCreated, domain.EventTaskAssigned:
		add(t.AssigneeID)
		if err := addProjectPMs(ctx, dir, t.ProjectID, recipients); err != nil {
			return nil, err
		}

	case domain.EventCommentCreated:
		add(t.AssigneeID)
		add(t.ReviewerID)
		if err := addProjectPMs(ctx, dir, t.ProjectID, recipients); err != nil {
			return nil, err
		}
		if nc.Comment != nil {
			delete(recipients, nc.Comment.AuthorID)
		}

	case domain.EventStatusChanged:
		status := strings.ToLower(t.Status)
		if status == "review" || status == "ready_for_review" {
			add(t.ReviewerID)
		}
		if err := addProjectPMs(ctx, dir, t.ProjectID, recipients); err != nil {
			return nil, err
		}

	case domain.EventTaskUpdated:
		// conservative: PMs only, no assignee/reviewer spam on minor edits
		if err := addProjectPMs(ctx, dir, t.ProjectID, recipients); err != nil {
			return nil, err
		}
	}

	delete(recipients, nc.ActorEmployeeID)
	return recipients, nil
}

func addProjectPMs(ctx context.Context, dir ports.Directory, projectID int64, into map[int64]struct{}) error {
	members, err := dir.ProjectMembers(ctx, projectID)
	if err != nil {
		return err
	}
	for _, m := range members {
		if _, ok := pmRoles[strings.ToLower(m.Role)]; ok {
			into[m.EmployeeID] = struct{}{}
		}
	}
	return nil
}
