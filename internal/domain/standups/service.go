package standups

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"

	"async-standup/internal/domain/identity"
)

const responseTokenBytes = 32

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type CreateStandupInput struct {
	CreatorID     int64
	Description   *string
	TeamMemberIDs []int64
}

// CreateStandup stores a draft standup named after today's date and the
// creator's running count. The count is read without a lock, so two creates
// racing for the same admin collide on the unique identifier.
func (s *Service) CreateStandup(ctx context.Context, input CreateStandupInput) (*Standup, []Assignment, error) {
	var description *string
	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		if trimmed != "" {
			description = &trimmed
		}
	}

	var (
		standup     Standup
		assignments []Assignment
	)
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		count, err := tx.CountStandupsByCreator(ctx, input.CreatorID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		standup = Standup{
			Identifier:  formatIdentifier(now, count+1),
			Description: description,
			CreatedAt:   now,
			UserID:      input.CreatorID,
			Status:      StatusDraft,
		}
		if err := tx.CreateStandup(ctx, &standup); err != nil {
			return err
		}

		if len(input.TeamMemberIDs) == 0 {
			return nil
		}
		assignments, err = assign(ctx, tx, standup.ID, input.TeamMemberIDs)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	return &standup, assignments, nil
}

// AssignTeamMembers creates one pending assignment per member id. Existing
// assignments for the same pair are not checked.
func (s *Service) AssignTeamMembers(ctx context.Context, standupID int64, teamMemberIDs []int64) ([]Assignment, error) {
	var assignments []Assignment
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetStandup(ctx, standupID); err != nil {
			return err
		}
		var err error
		assignments, err = assign(ctx, tx, standupID, teamMemberIDs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func assign(ctx context.Context, repo Repository, standupID int64, teamMemberIDs []int64) ([]Assignment, error) {
	if len(teamMemberIDs) == 0 {
		return []Assignment{}, nil
	}

	existing, err := repo.ExistingTeamMemberIDs(ctx, teamMemberIDs)
	if err != nil {
		return nil, err
	}
	known := make(map[int64]struct{}, len(existing))
	for _, id := range existing {
		known[id] = struct{}{}
	}

	assignments := make([]Assignment, 0, len(teamMemberIDs))
	for _, memberID := range teamMemberIDs {
		if _, ok := known[memberID]; !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownTeamMember, memberID)
		}
		token, err := identity.GenerateToken(responseTokenBytes)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, Assignment{
			StandupID:    standupID,
			TeamMemberID: memberID,
			ResponseURL:  token,
			Status:       AssignmentPending,
		})
	}

	if err := repo.CreateAssignments(ctx, assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

func (s *Service) GetAssignmentByToken(ctx context.Context, token string) (*Assignment, error) {
	if token == "" {
		return nil, ErrAssignmentNotFound
	}
	return s.repo.GetAssignmentByToken(ctx, token)
}

// SubmitResponse records the first answer and completes the assignment.
// Submitting again overwrites the answer.
func (s *Service) SubmitResponse(ctx context.Context, token string, payload ResponsePayload) (*Assignment, error) {
	return s.storeResponse(ctx, token, payload, true)
}

// EditResponse replaces the stored answer and keeps the current status.
func (s *Service) EditResponse(ctx context.Context, token string, payload ResponsePayload) (*Assignment, error) {
	return s.storeResponse(ctx, token, payload, false)
}

func (s *Service) storeResponse(ctx context.Context, token string, payload ResponsePayload, complete bool) (*Assignment, error) {
	encoded, err := encodePayload(payload)
	if err != nil {
		return nil, err
	}

	assignment, err := s.GetAssignmentByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	status := assignment.Status
	if complete {
		status = AssignmentCompleted
	}
	if err := s.repo.UpdateAssignmentResponse(ctx, assignment.ID, encoded, status); err != nil {
		return nil, err
	}

	assignment.Response = encoded
	assignment.Status = status
	assignment.UpdatedAt = s.now().UTC()
	return assignment, nil
}

func encodePayload(payload ResponsePayload) (datatypes.JSON, error) {
	if strings.TrimSpace(payload.Response) == "" {
		return nil, ErrInvalidResponse
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return datatypes.JSON(encoded), nil
}

// ListStandupsForUser pages through the standups visible to user: the ones an
// admin created, or the ones a team member is assigned to.
func (s *Service) ListStandupsForUser(ctx context.Context, user *identity.User, page int) (*StandupPage, error) {
	if page < 1 {
		page = 1
	}
	limit := DefaultPageSize
	offset := (page - 1) * limit

	var (
		items []Standup
		total int64
		err   error
	)
	if user.IsAdmin() {
		items, total, err = s.repo.ListStandupsByCreator(ctx, user.ID, limit, offset)
	} else {
		items, total, err = s.repo.ListStandupsByAssignee(ctx, user.ID, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Standup{}
	}

	return &StandupPage{
		Items: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   limit,
			Total:      total,
			TotalPages: int((total + int64(limit) - 1) / int64(limit)),
		},
	}, nil
}

func (s *Service) GetStandup(ctx context.Context, id int64) (*Standup, error) {
	return s.repo.GetStandup(ctx, id)
}

func (s *Service) ListAssignments(ctx context.Context, standupID int64) ([]AssignmentWithMember, error) {
	if _, err := s.repo.GetStandup(ctx, standupID); err != nil {
		return nil, err
	}
	assignments, err := s.repo.ListAssignments(ctx, standupID)
	if err != nil {
		return nil, err
	}
	if assignments == nil {
		assignments = []AssignmentWithMember{}
	}
	return assignments, nil
}

func formatIdentifier(day time.Time, seq int64) string {
	return fmt.Sprintf("%s-#%03d", day.Format("2006-01-02"), seq)
}
