package standups

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"
	"time"

	"gorm.io/datatypes"

	"async-standup/internal/domain/identity"
)

type fakeStandupRepo struct {
	standups    map[int64]*Standup
	assignments map[int64]*Assignment
	members     map[int64]int64 // team member id -> user id
	nextID      int64
}

func newFakeStandupRepo() *fakeStandupRepo {
	return &fakeStandupRepo{
		standups:    make(map[int64]*Standup),
		assignments: make(map[int64]*Assignment),
		members:     make(map[int64]int64),
	}
}

func (r *fakeStandupRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeStandupRepo) CountStandupsByCreator(ctx context.Context, userID int64) (int64, error) {
	var count int64
	for _, standup := range r.standups {
		if standup.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeStandupRepo) CreateStandup(ctx context.Context, standup *Standup) error {
	for _, existing := range r.standups {
		if existing.Identifier == standup.Identifier {
			return errors.New("duplicate identifier")
		}
	}
	r.nextID++
	standup.ID = r.nextID
	copied := *standup
	r.standups[standup.ID] = &copied
	return nil
}

func (r *fakeStandupRepo) GetStandup(ctx context.Context, id int64) (*Standup, error) {
	standup, ok := r.standups[id]
	if !ok {
		return nil, ErrStandupNotFound
	}
	copied := *standup
	return &copied, nil
}

func (r *fakeStandupRepo) page(filter func(Standup) bool, limit, offset int) ([]Standup, int64) {
	var all []Standup
	for _, standup := range r.standups {
		if filter(*standup) {
			all = append(all, *standup)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total
}

func (r *fakeStandupRepo) ListStandupsByCreator(ctx context.Context, userID int64, limit, offset int) ([]Standup, int64, error) {
	items, total := r.page(func(s Standup) bool { return s.UserID == userID }, limit, offset)
	return items, total, nil
}

func (r *fakeStandupRepo) ListStandupsByAssignee(ctx context.Context, userID int64, limit, offset int) ([]Standup, int64, error) {
	items, total := r.page(func(s Standup) bool {
		for _, assignment := range r.assignments {
			if assignment.StandupID == s.ID && r.members[assignment.TeamMemberID] == userID {
				return true
			}
		}
		return false
	}, limit, offset)
	return items, total, nil
}

func (r *fakeStandupRepo) ExistingTeamMemberIDs(ctx context.Context, ids []int64) ([]int64, error) {
	var found []int64
	for _, id := range ids {
		if _, ok := r.members[id]; ok {
			found = append(found, id)
		}
	}
	return found, nil
}

func (r *fakeStandupRepo) CreateAssignments(ctx context.Context, assignments []Assignment) error {
	for i := range assignments {
		r.nextID++
		assignments[i].ID = r.nextID
		copied := assignments[i]
		r.assignments[copied.ID] = &copied
	}
	return nil
}

func (r *fakeStandupRepo) GetAssignmentByToken(ctx context.Context, token string) (*Assignment, error) {
	for _, assignment := range r.assignments {
		if assignment.ResponseURL == token {
			copied := *assignment
			return &copied, nil
		}
	}
	return nil, ErrAssignmentNotFound
}

func (r *fakeStandupRepo) UpdateAssignmentResponse(ctx context.Context, id int64, response datatypes.JSON, status string) error {
	assignment, ok := r.assignments[id]
	if !ok {
		return ErrAssignmentNotFound
	}
	assignment.Response = response
	assignment.Status = status
	return nil
}

func (r *fakeStandupRepo) ListAssignments(ctx context.Context, standupID int64) ([]AssignmentWithMember, error) {
	var out []AssignmentWithMember
	for _, assignment := range r.assignments {
		if assignment.StandupID == standupID {
			out = append(out, AssignmentWithMember{
				Assignment: *assignment,
				TeamMember: MemberSummary{ID: assignment.TeamMemberID},
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func newTestService(repo Repository, now time.Time) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return now }
	return svc
}

func decodeResponse(t *testing.T, raw datatypes.JSON) string {
	t.Helper()
	var payload ResponsePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload.Response
}

func TestCreateStandupIdentifier(t *testing.T) {
	repo := newFakeStandupRepo()
	svc := newTestService(repo, time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC))

	description := "  sprint 1 "
	first, _, err := svc.CreateStandup(context.Background(), CreateStandupInput{CreatorID: 1, Description: &description})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if first.Identifier != "2026-03-02-#001" || first.Status != StatusDraft {
		t.Fatalf("unexpected standup %+v", first)
	}
	if first.Description == nil || *first.Description != "sprint 1" {
		t.Fatalf("expected trimmed description, got %v", first.Description)
	}

	second, _, err := svc.CreateStandup(context.Background(), CreateStandupInput{CreatorID: 1})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if second.Identifier != "2026-03-02-#002" || second.Description != nil {
		t.Fatalf("unexpected standup %+v", second)
	}

	// Sequence is per creator, so a second admin on the same day collides.
	if _, _, err := svc.CreateStandup(context.Background(), CreateStandupInput{CreatorID: 2}); err == nil {
		t.Fatalf("expected identifier collision for a different creator")
	}
}

func TestCreateStandupWithMembers(t *testing.T) {
	repo := newFakeStandupRepo()
	repo.members[7] = 70
	svc := newTestService(repo, time.Now())

	standup, assignments, err := svc.CreateStandup(context.Background(), CreateStandupInput{CreatorID: 1, TeamMemberIDs: []int64{7}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(assignments) != 1 || assignments[0].StandupID != standup.ID {
		t.Fatalf("unexpected assignments %+v", assignments)
	}
}

func TestAssignTeamMembers(t *testing.T) {
	repo := newFakeStandupRepo()
	repo.members[7] = 70
	repo.members[8] = 80
	svc := newTestService(repo, time.Now())

	standup, _, err := svc.CreateStandup(context.Background(), CreateStandupInput{CreatorID: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	assignments, err := svc.AssignTeamMembers(context.Background(), standup.ID, []int64{7, 8})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(assignments) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(assignments))
	}
	if assignments[0].ResponseURL == "" || assignments[0].ResponseURL == assignments[1].ResponseURL {
		t.Fatalf("expected distinct tokens, got %q and %q", assignments[0].ResponseURL, assignments[1].ResponseURL)
	}
	for _, assignment := range assignments {
		if assignment.Status != AssignmentPending || len(assignment.ResponseURL) != 64 {
			t.Fatalf("unexpected assignment %+v", assignment)
		}
	}
}

func TestAssignTeamMembersErrors(t *testing.T) {
	repo := newFakeStandupRepo()
	repo.members[7] = 70
	svc := newTestService(repo, time.Now())

	if _, err := svc.AssignTeamMembers(context.Background(), 404, []int64{7}); !errors.Is(err, ErrStandupNotFound) {
		t.Fatalf("expected ErrStandupNotFound, got %v", err)
	}

	standup, _, _ := svc.CreateStandup(context.Background(), CreateStandupInput{CreatorID: 1})
	if _, err := svc.AssignTeamMembers(context.Background(), standup.ID, []int64{7, 99}); !errors.Is(err, ErrUnknownTeamMember) {
		t.Fatalf("expected ErrUnknownTeamMember, got %v", err)
	}
	if len(repo.assignments) != 0 {
		t.Fatalf("expected no assignments, got %d", len(repo.assignments))
	}
}

func TestSubmitThenEditResponse(t *testing.T) {
	repo := newFakeStandupRepo()
	repo.members[7] = 70
	svc := newTestService(repo, time.Now())

	standup, _, _ := svc.CreateStandup(context.Background(), CreateStandupInput{CreatorID: 1})
	assignments, err := svc.AssignTeamMembers(context.Background(), standup.ID, []int64{7})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	token := assignments[0].ResponseURL

	submitted, err := svc.SubmitResponse(context.Background(), token, ResponsePayload{Response: "x"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted.Status != AssignmentCompleted || decodeResponse(t, submitted.Response) != "x" {
		t.Fatalf("unexpected assignment after submit %+v", submitted)
	}

	edited, err := svc.EditResponse(context.Background(), token, ResponsePayload{Response: "y"})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.Status != AssignmentCompleted {
		t.Fatalf("expected status to stay completed, got %q", edited.Status)
	}

	stored, _ := repo.GetAssignmentByToken(context.Background(), token)
	if got := decodeResponse(t, stored.Response); got != "y" {
		t.Fatalf("expected last write to win, got %q", got)
	}
}

func TestEditBeforeSubmitKeepsPending(t *testing.T) {
	repo := newFakeStandupRepo()
	repo.members[7] = 70
	svc := newTestService(repo, time.Now())

	standup, _, _ := svc.CreateStandup(context.Background(), CreateStandupInput{CreatorID: 1})
	assignments, _ := svc.AssignTeamMembers(context.Background(), standup.ID, []int64{7})

	edited, err := svc.EditResponse(context.Background(), assignments[0].ResponseURL, ResponsePayload{Response: "draft"})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.Status != AssignmentPending {
		t.Fatalf("expected pending, got %q", edited.Status)
	}
}

func TestResponseErrors(t *testing.T) {
	repo := newFakeStandupRepo()
	repo.members[7] = 70
	svc := newTestService(repo, time.Now())

	standup, _, _ := svc.CreateStandup(context.Background(), CreateStandupInput{CreatorID: 1})
	assignments, _ := svc.AssignTeamMembers(context.Background(), standup.ID, []int64{7})

	if _, err := svc.SubmitResponse(context.Background(), "does-not-exist", ResponsePayload{Response: "x"}); !errors.Is(err, ErrAssignmentNotFound) {
		t.Fatalf("expected ErrAssignmentNotFound, got %v", err)
	}
	if _, err := svc.SubmitResponse(context.Background(), assignments[0].ResponseURL, ResponsePayload{Response: "   "}); !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
	if stored := repo.assignments[assignments[0].ID]; stored.Status != AssignmentPending || stored.Response != nil {
		t.Fatalf("expected untouched assignment, got %+v", stored)
	}
}

func TestListStandupsForUser(t *testing.T) {
	repo := newFakeStandupRepo()
	repo.members[7] = 70
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, base)

	admin := &identity.User{ID: 1, Role: identity.RoleAdmin}
	member := &identity.User{ID: 70, Role: identity.RoleTeamMember}

	var assigned int64
	for i := 0; i < 12; i++ {
		svc.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		standup, _, err := svc.CreateStandup(context.Background(), CreateStandupInput{CreatorID: admin.ID})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if i == 3 {
			assigned = standup.ID
			if _, err := svc.AssignTeamMembers(context.Background(), standup.ID, []int64{7}); err != nil {
				t.Fatalf("assign: %v", err)
			}
		}
	}

	first, err := svc.ListStandupsForUser(context.Background(), admin, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first.Items) != 10 || first.Pagination.Page != 1 || first.Pagination.Total != 12 || first.Pagination.TotalPages != 2 {
		t.Fatalf("unexpected first page %+v", first.Pagination)
	}
	if first.Items[0].Identifier != "2026-03-02-#012" {
		t.Fatalf("expected newest first, got %q", first.Items[0].Identifier)
	}

	second, _ := svc.ListStandupsForUser(context.Background(), admin, 2)
	if len(second.Items) != 2 {
		t.Fatalf("expected 2 items on page 2, got %d", len(second.Items))
	}

	mine, _ := svc.ListStandupsForUser(context.Background(), member, 1)
	if len(mine.Items) != 1 || mine.Items[0].ID != assigned {
		t.Fatalf("expected only the assigned standup, got %+v", mine.Items)
	}

	empty, _ := svc.ListStandupsForUser(context.Background(), &identity.User{ID: 99, Role: identity.RoleTeamMember}, 1)
	if empty.Items == nil || len(empty.Items) != 0 || empty.Pagination.TotalPages != 0 {
		t.Fatalf("unexpected empty page %+v", empty)
	}
}

func TestListAssignmentsMissingStandup(t *testing.T) {
	svc := newTestService(newFakeStandupRepo(), time.Now())
	if _, err := svc.ListAssignments(context.Background(), 1); !errors.Is(err, ErrStandupNotFound) {
		t.Fatalf("expected ErrStandupNotFound, got %v", err)
	}
}
