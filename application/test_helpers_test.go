package application

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"tourney/application/dto"
	"tourney/domain/entities"
	"tourney/domain/events"
	"tourney/domain/interfaces"
	"tourney/domain/testhelpers"
)

const (
	testGuildID      = int64(555555555)
	testTournamentID = int64(1)
)

// fakeUnitOfWorkFactory hands out units of work sharing one set of repository mocks.
// Events reach Published only when a unit of work commits.
type fakeUnitOfWorkFactory struct {
	TournamentRepo *testhelpers.MockTournamentRepository
	MatchRepo      *testhelpers.MockMatchRepository
	WalletRepo     *testhelpers.MockWalletRepository
	BetGameRepo    *testhelpers.MockBetGameRepository
	WagerRepo      *testhelpers.MockWagerRepository
	LedgerRepo     *testhelpers.MockLedgerRepository

	mu        sync.Mutex
	Published []events.Event
	Guilds    []int64
	Commits   int
	Rollbacks int
	BeginErr  error
}

func newFakeUnitOfWorkFactory() *fakeUnitOfWorkFactory {
	return &fakeUnitOfWorkFactory{
		TournamentRepo: new(testhelpers.MockTournamentRepository),
		MatchRepo:      new(testhelpers.MockMatchRepository),
		WalletRepo:     new(testhelpers.MockWalletRepository),
		BetGameRepo:    new(testhelpers.MockBetGameRepository),
		WagerRepo:      new(testhelpers.MockWagerRepository),
		LedgerRepo:     new(testhelpers.MockLedgerRepository),
	}
}

func (f *fakeUnitOfWorkFactory) CreateForGuild(guildID int64) UnitOfWork {
	f.mu.Lock()
	f.Guilds = append(f.Guilds, guildID)
	f.mu.Unlock()
	return &fakeUnitOfWork{factory: f}
}

func (f *fakeUnitOfWorkFactory) publishedTypes() []events.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]events.EventType, 0, len(f.Published))
	for _, e := range f.Published {
		types = append(types, e.Type())
	}
	return types
}

type fakeUnitOfWork struct {
	factory *fakeUnitOfWorkFactory
	pending []events.Event
	open    bool
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	if u.factory.BeginErr != nil {
		return u.factory.BeginErr
	}
	if u.open {
		return errors.New("transaction already started")
	}
	u.open = true
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	if !u.open {
		return errors.New("no transaction to commit")
	}
	u.open = false
	u.factory.mu.Lock()
	u.factory.Commits++
	u.factory.Published = append(u.factory.Published, u.pending...)
	u.factory.mu.Unlock()
	u.pending = nil
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	if !u.open {
		return nil
	}
	u.open = false
	u.factory.mu.Lock()
	u.factory.Rollbacks++
	u.factory.mu.Unlock()
	u.pending = nil
	return nil
}

func (u *fakeUnitOfWork) Publish(event events.Event) error {
	u.pending = append(u.pending, event)
	return nil
}

func (u *fakeUnitOfWork) TournamentRepository() interfaces.TournamentRepository {
	return u.factory.TournamentRepo
}
func (u *fakeUnitOfWork) MatchRepository() interfaces.MatchRepository { return u.factory.MatchRepo }
func (u *fakeUnitOfWork) WalletRepository() interfaces.WalletRepository {
	return u.factory.WalletRepo
}
func (u *fakeUnitOfWork) BetGameRepository() interfaces.BetGameRepository {
	return u.factory.BetGameRepo
}
func (u *fakeUnitOfWork) WagerRepository() interfaces.WagerRepository { return u.factory.WagerRepo }
func (u *fakeUnitOfWork) LedgerRepository() interfaces.LedgerRepository {
	return u.factory.LedgerRepo
}
func (u *fakeUnitOfWork) EventBus() interfaces.EventPublisher { return u }

// recordingNotifier keeps every posted notification
type recordingNotifier struct {
	Posts []dto.NotificationDTO
	Err   error
}

func (n *recordingNotifier) PostNotification(ctx context.Context, notification dto.NotificationDTO) error {
	if n.Err != nil {
		return n.Err
	}
	n.Posts = append(n.Posts, notification)
	return nil
}

// staticUsers names every user "user-<id>"
type staticUsers struct{}

func (staticUsers) DisplayName(ctx context.Context, guildID, userID int64) string {
	return "user-" + strconv.FormatInt(userID, 10)
}

func ptr(v int64) *int64 {
	return &v
}

func startedTournament() *entities.Tournament {
	return &entities.Tournament{
		ID:         testTournamentID,
		GuildID:    testGuildID,
		Name:       "Weekly Cup",
		BestOf:     3,
		MaxPlayers: 4,
		TeamSize:   1,
		Maps:       []string{"dust2", "mirage"},
		HasStarted: true,
		ChannelID:  ptr(777),
	}
}

// fourPlayerBracket returns 1=(10,11) 2=(12,13) and the empty final 3
func fourPlayerBracket() []*entities.Match {
	dust2, mirage := "dust2", "mirage"
	return []*entities.Match{
		{ID: 1, TournamentID: testTournamentID, User1ID: ptr(10), User2ID: ptr(11), Map: &dust2},
		{ID: 2, TournamentID: testTournamentID, User1ID: ptr(12), User2ID: ptr(13), Map: &mirage},
		{ID: 3, TournamentID: testTournamentID, PreviousMatch1ID: ptr(1), PreviousMatch2ID: ptr(2)},
	}
}
