package services

import (
	"context"
	"errors"
	"time"

	"github.com/kassslll/philosofium/backend/repos"
	"github.com/kassslll/philosofium/backend/utils"

	"gorm.io/gorm"
)

type UserProfile struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	Name        string    `json:"name"`
	TotalXP     int64     `json:"total_xp"`
	StreakDays  int       `json:"streak_days"`
	MemberSince time.Time `json:"member_since"`
}

type ProfileService struct {
	users   repos.UserRepo
	ledger  repos.LedgerRepo
	streaks *StreakCalculator
	clock   Clock
	log     *utils.Logger
}

func NewProfileService(users repos.UserRepo, ledger repos.LedgerRepo, streaks *StreakCalculator, clock Clock, baseLog *utils.Logger) *ProfileService {
	return &ProfileService{
		users:   users,
		ledger:  ledger,
		streaks: streaks,
		clock:   clock,
		log:     baseLog.With("service", "ProfileService"),
	}
}

func (s *ProfileService) Profile(ctx context.Context, id Identity) (*UserProfile, error) {
	user, err := s.users.GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	xp, err := s.ledger.EnsureUserXP(ctx, nil, user.ID)
	if err != nil {
		return nil, err
	}
	streak, err := s.streaks.CurrentStreak(ctx, user.ID, s.clock.Today())
	if err != nil {
		return nil, err
	}

	return &UserProfile{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		FullName:    user.FullName,
		Name:        user.DisplayName(),
		TotalXP:     xp.TotalXP,
		StreakDays:  streak,
		MemberSince: user.CreatedAt,
	}, nil
}
