package inmemory

import (
	"context"
	"sort"
	"strings"

	"async-standup/internal/domain/identity"
	"async-standup/internal/domain/team"
)

type TeamRepository struct {
	conn
}

func (r *TeamRepository) Transaction(ctx context.Context, fn func(team.Repository) error) error {
	return r.transaction(func(c conn) error {
		return fn(&TeamRepository{conn: c})
	})
}

func (r *TeamRepository) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	var taken bool
	err := r.view(func(t *tables) error {
		for _, user := range t.users {
			if strings.EqualFold(user.Email, email) {
				taken = true
				return nil
			}
		}
		for _, member := range t.members {
			if strings.EqualFold(member.Email, email) {
				taken = true
				return nil
			}
		}
		return nil
	})
	return taken, err
}

func (r *TeamRepository) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	var taken bool
	err := r.view(func(t *tables) error {
		for _, user := range t.users {
			if user.Username == username {
				taken = true
				break
			}
		}
		return nil
	})
	return taken, err
}

func (r *TeamRepository) CreateUser(ctx context.Context, user *identity.User) error {
	return r.update(func(t *tables) error {
		return insertUser(t, user, r.now())
	})
}

func (r *TeamRepository) CreateTeamMember(ctx context.Context, member *team.TeamMember) error {
	return r.update(func(t *tables) error {
		for _, existing := range t.members {
			if strings.EqualFold(existing.Email, member.Email) || existing.UserID == member.UserID {
				return ErrUniqueViolation
			}
		}
		if _, ok := t.users[member.UserID]; !ok {
			return identity.ErrUserNotFound
		}
		member.ID = t.nextID()
		if member.CreatedAt.IsZero() {
			member.CreatedAt = r.now()
		}
		t.members[member.ID] = *member
		return nil
	})
}

func (r *TeamRepository) GetUserByActivationToken(ctx context.Context, token string) (*identity.User, error) {
	var found *identity.User
	err := r.view(func(t *tables) error {
		for _, user := range t.users {
			if user.ActivationToken != nil && *user.ActivationToken == token {
				found = &user
				return nil
			}
		}
		return team.ErrInvalidOrExpiredToken
	})
	return found, err
}

func (r *TeamRepository) ActivateUser(ctx context.Context, userID int64, passwordHash string) error {
	return r.update(func(t *tables) error {
		user, ok := t.users[userID]
		if !ok {
			return identity.ErrUserNotFound
		}
		user.Password = &passwordHash
		user.Status = identity.StatusActive
		user.ActivationToken = nil
		t.users[userID] = user
		return nil
	})
}

func (r *TeamRepository) ActivateTeamMemberByUser(ctx context.Context, userID int64) error {
	return r.update(func(t *tables) error {
		for id, member := range t.members {
			if member.UserID == userID {
				member.Active = true
				t.members[id] = member
			}
		}
		return nil
	})
}

func (r *TeamRepository) ListTeamMembers(ctx context.Context, filter team.ListFilter) ([]team.TeamMember, error) {
	var members []team.TeamMember
	err := r.view(func(t *tables) error {
		assigned := map[int64]bool{}
		if filter.ExcludeStandupID != nil {
			for _, assignment := range t.assignments {
				if assignment.StandupID == *filter.ExcludeStandupID {
					assigned[assignment.TeamMemberID] = true
				}
			}
		}
		members = make([]team.TeamMember, 0, len(t.members))
		for _, member := range t.members {
			if !assigned[member.ID] {
				members = append(members, member)
			}
		}
		return nil
	})
	sort.Slice(members, func(i, j int) bool {
		if members[i].Name != members[j].Name {
			return members[i].Name < members[j].Name
		}
		return members[i].ID < members[j].ID
	})
	return members, err
}

func (r *TeamRepository) GetTeamMember(ctx context.Context, id int64) (*team.TeamMember, error) {
	var found *team.TeamMember
	err := r.view(func(t *tables) error {
		member, ok := t.members[id]
		if !ok {
			return team.ErrTeamMemberNotFound
		}
		found = &member
		return nil
	})
	return found, err
}

func (r *TeamRepository) DeleteAssignmentsByTeamMember(ctx context.Context, teamMemberID int64) error {
	return r.update(func(t *tables) error {
		for id, assignment := range t.assignments {
			if assignment.TeamMemberID != teamMemberID {
				continue
			}
			for reactionID, reaction := range t.reactions {
				if reaction.AssignmentID == id {
					delete(t.reactions, reactionID)
				}
			}
			for commentID, comment := range t.comments {
				if comment.AssignmentID == id {
					delete(t.comments, commentID)
				}
			}
			delete(t.assignments, id)
		}
		return nil
	})
}

func (r *TeamRepository) DeleteUserActivity(ctx context.Context, userID int64) error {
	return r.update(func(t *tables) error {
		for hash, session := range t.sessions {
			if session.UserID == userID {
				delete(t.sessions, hash)
			}
		}
		for id, reaction := range t.reactions {
			if reaction.UserID == userID {
				delete(t.reactions, id)
			}
		}
		for id, comment := range t.comments {
			if comment.UserID == userID {
				delete(t.comments, id)
			}
		}
		return nil
	})
}

func (r *TeamRepository) DeleteTeamMember(ctx context.Context, id int64) error {
	return r.update(func(t *tables) error {
		delete(t.members, id)
		return nil
	})
}

func (r *TeamRepository) DeleteUser(ctx context.Context, userID int64) error {
	return r.update(func(t *tables) error {
		delete(t.users, userID)
		return nil
	})
}
