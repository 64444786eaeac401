package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"tourney/domain/bracket"
	"tourney/domain/entities"
	"tourney/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTournamentService_CreateTournament(t *testing.T) {
	t.Parallel()

	t.Run("valid tournament is persisted", func(t *testing.T) {
		t.Parallel()
		mocks := newTestMocks()
		tournament := createTestTournament(func(t *entities.Tournament) { t.ID = 0 })
		mocks.TournamentRepo.On("Create", mock.Anything, tournament).Return(nil)

		err := mocks.tournamentService().CreateTournament(context.Background(), tournament)

		require.NoError(t, err)
		mocks.assertAllExpectations(t)
	})

	t.Run("invalid bracket size is rejected without writes", func(t *testing.T) {
		t.Parallel()
		mocks := newTestMocks()
		tournament := createTestTournament(func(t *entities.Tournament) { t.MaxPlayers = 6 })

		err := mocks.tournamentService().CreateTournament(context.Background(), tournament)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "power of two")
		mocks.TournamentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestTournamentService_Register(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(m *testMocks)
		wantErr error
	}{
		{
			name: "tournament not found",
			setup: func(m *testMocks) {
				m.TournamentRepo.On("GetByID", mock.Anything, testTournamentID).Return(nil, nil)
			},
			wantErr: ErrTournamentNotFound,
		},
		{
			name: "already started",
			setup: func(m *testMocks) {
				m.TournamentRepo.On("GetByID", mock.Anything, testTournamentID).Return(createTestTournament(started), nil)
			},
			wantErr: ErrTournamentStarted,
		},
		{
			name: "registration not open yet",
			setup: func(m *testMocks) {
				m.TournamentRepo.On("GetByID", mock.Anything, testTournamentID).Return(createTestTournament(func(t *entities.Tournament) {
					t.RegistrationDate = time.Now().Add(time.Hour)
				}), nil)
			},
			wantErr: ErrRegistrationClosed,
		},
		{
			name: "registration window over",
			setup: func(m *testMocks) {
				m.TournamentRepo.On("GetByID", mock.Anything, testTournamentID).Return(createTestTournament(func(t *entities.Tournament) {
					t.StartDate = time.Now().Add(-time.Minute)
				}), nil)
			},
			wantErr: ErrRegistrationClosed,
		},
		{
			name: "already registered",
			setup: func(m *testMocks) {
				m.TournamentRepo.On("GetByID", mock.Anything, testTournamentID).Return(createTestTournament(), nil)
				m.TournamentRepo.On("IsRegistered", mock.Anything, testTournamentID, int64(10)).Return(true, nil)
			},
			wantErr: ErrAlreadyRegistered,
		},
		{
			name: "tournament full",
			setup: func(m *testMocks) {
				m.TournamentRepo.On("GetByID", mock.Anything, testTournamentID).Return(createTestTournament(func(t *entities.Tournament) {
					t.RegisteredCount = 4
				}), nil)
			},
			wantErr: ErrTournamentFull,
		},
		{
			name: "full wins over already registered",
			setup: func(m *testMocks) {
				m.TournamentRepo.On("GetByID", mock.Anything, testTournamentID).Return(createTestTournament(func(t *entities.Tournament) {
					t.RegisteredCount = 4
				}), nil)
				m.TournamentRepo.On("IsRegistered", mock.Anything, testTournamentID, int64(10)).Return(true, nil).Maybe()
			},
			wantErr: ErrTournamentFull,
		},
		{
			name: "team capacity counts every member",
			setup: func(m *testMocks) {
				m.TournamentRepo.On("GetByID", mock.Anything, testTournamentID).Return(createTestTournament(func(t *entities.Tournament) {
					t.TeamSize = 2
					t.RegisteredCount = 7
				}), nil)
				m.TournamentRepo.On("IsRegistered", mock.Anything, testTournamentID, int64(10)).Return(false, nil)
				m.TournamentRepo.On("RegisterParticipant", mock.Anything, testTournamentID, int64(10)).Return(nil)
			},
		},
		{
			name: "success",
			setup: func(m *testMocks) {
				m.TournamentRepo.On("GetByID", mock.Anything, testTournamentID).Return(createTestTournament(), nil)
				m.TournamentRepo.On("IsRegistered", mock.Anything, testTournamentID, int64(10)).Return(false, nil)
				m.TournamentRepo.On("RegisterParticipant", mock.Anything, testTournamentID, int64(10)).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mocks := newTestMocks()
			tt.setup(mocks)

			err := mocks.tournamentService().Register(context.Background(), testTournamentID, 10)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				mocks.TournamentRepo.AssertNotCalled(t, "RegisterParticipant", mock.Anything, mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
			mocks.assertAllExpectations(t)
		})
	}
}

func TestTournamentService_Unregister(t *testing.T) {
	t.Parallel()

	t.Run("removes registration", func(t *testing.T) {
		t.Parallel()
		mocks := newTestMocks()
		mocks.TournamentRepo.On("GetByID", mock.Anything, testTournamentID).Return(createTestTournament(), nil)
		mocks.TournamentRepo.On("UnregisterParticipant", mock.Anything, testTournamentID, int64(10)).Return(true, nil)

		assert.NoError(t, mocks.tournamentService().Unregister(context.Background(), testTournamentID, 10))
	})

	t.Run("not registered", func(t *testing.T) {
		t.Parallel()
		mocks := newTestMocks()
		mocks.TournamentRepo.On("GetByID", mock.Anything, testTournamentID).Return(createTestTournament(), nil)
		mocks.TournamentRepo.On("UnregisterParticipant", mock.Anything, testTournamentID, int64(10)).Return(false, nil)

		assert.ErrorIs(t, mocks.tournamentService().Unregister(context.Background(), testTournamentID, 10), ErrNotRegistered)
	})

	t.Run("started tournament", func(t *testing.T) {
		t.Parallel()
		mocks := newTestMocks()
		mocks.TournamentRepo.On("GetByID", mock.Anything, testTournamentID).Return(createTestTournament(started), nil)

		assert.ErrorIs(t, mocks.tournamentService().Unregister(context.Background(), testTournamentID, 10), ErrTournamentStarted)
	})
}

// expectSkeletonCreation assigns sequential ids to created matches and captures persisted updates
func expectSkeletonCreation(m *testMocks, updated *[]*entities.Match) {
	var nextID int64
	m.MatchRepo.On("GetByTournament", mock.Anything, testTournamentID).Return([]*entities.Match{}, nil)
	m.MatchRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Match")).Run(func(args mock.Arguments) {
		nextID++
		args.Get(1).(*entities.Match).ID = nextID
	}).Return(nil)
	m.MatchRepo.On("UpdateMany", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		*updated = append(*updated, args.Get(1).([]*entities.Match)...)
	}).Return(nil)
}

func TestTournamentService_Start_FourPlayers(t *testing.T) {
	t.Parallel()
	mocks := newTestMocks()
	tournament := createTestTournament()
	var updated []*entities.Match

	mocks.TournamentRepo.On("GetByID", mock.Anything, testTournamentID).Return(tournament, nil)
	mocks.TournamentRepo.On("GetParticipants", mock.Anything, testTournamentID).Return(participants(10, 11, 12, 13), nil)
	expectSkeletonCreation(mocks, &updated)
	mocks.TournamentRepo.On("Update", mock.Anything, mock.MatchedBy(func(t *entities.Tournament) bool {
		return t.HasStarted
	})).Return(nil)
	mocks.expectEventPublish(events.EventTypeTournamentStarted)

	result, err := mocks.tournamentService().Start(context.Background(), testTournamentID)

	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11, 12, 13}, result.Admitted)
	assert.Empty(t, result.Excluded)
	require.Len(t, result.Matches, 3)

	root := bracket.BuildTree(result.Matches)
	leaves := bracket.Leaves(root)
	require.Len(t, leaves, 2)
	for _, leaf := range leaves {
		assert.True(t, leaf.Match.HasBothUsers())
		assert.NotNil(t, leaf.Match.Map)
		assert.False(t, leaf.Match.IsDecided())
	}
	assert.True(t, root.Match.HasNoUsers())
	assert.ElementsMatch(t, []int64{1, 2}, matchIDs(updated))
	mocks.assertAllExpectations(t)
}

func TestTournamentService_Start_ThreePlayersGetsBye(t *testing.T) {
	t.Parallel()
	mocks := newTestMocks()
	var updated []*entities.Match

	mocks.TournamentRepo.On("GetByID", mock.Anything, testTournamentID).Return(createTestTournament(), nil)
	mocks.TournamentRepo.On("GetParticipants", mock.Anything, testTournamentID).Return(participants(10, 11, 12), nil)
	expectSkeletonCreation(mocks, &updated)
	mocks.TournamentRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	mocks.expectEventPublish(events.EventTypeTournamentStarted)

	result, err := mocks.tournamentService().Start(context.Background(), testTournamentID)

	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2, 3}, matchIDs(updated))

	root := bracket.BuildTree(result.Matches)
	bye := bracket.Find(root, 2).Match
	require.True(t, bye.IsDecided())
	assert.Equal(t, entities.ScoreNotPlayed, *bye.Score)
	assert.True(t, root.Match.HasUser(*bye.WinnerID))
	assert.False(t, root.Match.IsDecided(), "final waits for the winner of the other leaf")
}

func TestTournamentService_Start_TeamsExcludeIncompleteTeam(t *testing.T) {
	t.Parallel()
	mocks := newTestMocks()
	tournament := createTestTournament(func(t *entities.Tournament) {
		t.TeamSize = 2
		t.MaxPlayers = 4
	})
	var updated []*entities.Match
	var saved []*entities.TeamMember

	mocks.TournamentRepo.On("GetByID", mock.Anything, testTournamentID).Return(tournament, nil)
	mocks.TournamentRepo.On("GetParticipants", mock.Anything, testTournamentID).Return(participants(10, 11, 12, 13, 14), nil)
	expectSkeletonCreation(mocks, &updated)
	mocks.TournamentRepo.On("SaveTeamMembers", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).([]*entities.TeamMember)
	}).Return(nil)
	mocks.TournamentRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	mocks.expectEventPublish(events.EventTypeTournamentStarted)

	result, err := mocks.tournamentService().Start(context.Background(), testTournamentID)

	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11, 12, 13}, result.Admitted)
	assert.Equal(t, []int64{14}, result.Excluded)
	assert.Equal(t, 2, result.Tournament.MaxPlayers, "bracket shrinks to the team count")
	require.Len(t, result.Matches, 1)
	assert.True(t, result.Matches[0].HasBothUsers())
	require.Len(t, saved, 2)
	for _, member := range saved {
		assert.Contains(t, result.Leaders, member.LeaderID)
		assert.NotContains(t, result.Leaders, member.TeammateID)
	}
}

func TestTournamentService_Start_Rejections(t *testing.T) {
	t.Parallel()

	t.Run("not enough participants", func(t *testing.T) {
		t.Parallel()
		mocks := newTestMocks()
		mocks.TournamentRepo.On("GetByID", mock.Anything, testTournamentID).Return(createTestTournament(), nil)
		mocks.TournamentRepo.On("GetParticipants", mock.Anything, testTournamentID).Return(participants(10), nil)

		_, err := mocks.tournamentService().Start(context.Background(), testTournamentID)

		assert.ErrorIs(t, err, ErrNotEnoughParticipants)
		mocks.MatchRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("already started", func(t *testing.T) {
		t.Parallel()
		mocks := newTestMocks()
		mocks.TournamentRepo.On("GetByID", mock.Anything, testTournamentID).Return(createTestTournament(started), nil)

		_, err := mocks.tournamentService().Start(context.Background(), testTournamentID)

		assert.ErrorIs(t, err, ErrTournamentStarted)
	})

	t.Run("storage failure is wrapped", func(t *testing.T) {
		t.Parallel()
		mocks := newTestMocks()
		mocks.TournamentRepo.On("GetByID", mock.Anything, testTournamentID).Return(createTestTournament(), nil)
		mocks.TournamentRepo.On("GetParticipants", mock.Anything, testTournamentID).Return(nil, errors.New("connection reset"))

		_, err := mocks.tournamentService().Start(context.Background(), testTournamentID)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get participants")
	})
}

func TestTournamentService_Start_ReusesExistingSkeleton(t *testing.T) {
	t.Parallel()
	mocks := newTestMocks()
	skeleton := []*entities.Match{
		{ID: 7, TournamentID: testTournamentID},
		{ID: 8, TournamentID: testTournamentID},
		{ID: 9, TournamentID: testTournamentID, PreviousMatch1ID: ptr(7), PreviousMatch2ID: ptr(8)},
	}

	mocks.TournamentRepo.On("GetByID", mock.Anything, testTournamentID).Return(createTestTournament(), nil)
	mocks.TournamentRepo.On("GetParticipants", mock.Anything, testTournamentID).Return(participants(10, 11, 12, 13), nil)
	mocks.MatchRepo.On("GetByTournament", mock.Anything, testTournamentID).Return(skeleton, nil)
	mocks.MatchRepo.On("UpdateMany", mock.Anything, mock.Anything).Return(nil)
	mocks.TournamentRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	mocks.expectEventPublish(events.EventTypeTournamentStarted)

	result, err := mocks.tournamentService().Start(context.Background(), testTournamentID)

	require.NoError(t, err)
	assert.Equal(t, skeleton, result.Matches)
	mocks.MatchRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTournamentService_Finalize(t *testing.T) {
	t.Parallel()

	decidedBracket := func() []*entities.Match {
		matches := fourPlayerBracket()
		now := time.Now()
		matches[0].Decide(10, "2-0", now)
		matches[1].Decide(13, "2-1", now)
		matches[2].PlaceUser(10)
		matches[2].PlaceUser(13)
		matches[2].Decide(13, "2-1", now)
		return matches
	}

	t.Run("final decided", func(t *testing.T) {
		t.Parallel()
		mocks := newTestMocks()
		mocks.TournamentRepo.On("GetByID", mock.Anything, testTournamentID).Return(createTestTournament(started), nil)
		mocks.MatchRepo.On("GetByTournament", mock.Anything, testTournamentID).Return(decidedBracket(), nil)
		mocks.TournamentRepo.On("Update", mock.Anything, mock.MatchedBy(func(t *entities.Tournament) bool {
			return t.HasFinished
		})).Return(nil)
		mocks.expectEventPublish(events.EventTypeTournamentFinished)

		standings, err := mocks.tournamentService().Finalize(context.Background(), testTournamentID)

		require.NoError(t, err)
		assert.Equal(t, int64(13), standings.First)
		assert.Equal(t, int64(10), standings.Second)
		assert.Equal(t, [2]int64{11, 12}, standings.Third)
		mocks.assertAllExpectations(t)
	})

	t.Run("already finished does not publish again", func(t *testing.T) {
		t.Parallel()
		mocks := newTestMocks()
		mocks.TournamentRepo.On("GetByID", mock.Anything, testTournamentID).Return(createTestTournament(started, func(t *entities.Tournament) {
			t.HasFinished = true
		}), nil)
		mocks.MatchRepo.On("GetByTournament", mock.Anything, testTournamentID).Return(decidedBracket(), nil)

		standings, err := mocks.tournamentService().Finalize(context.Background(), testTournamentID)

		require.NoError(t, err)
		assert.Equal(t, int64(13), standings.First)
		mocks.TournamentRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		mocks.EventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
	})

	t.Run("final pending", func(t *testing.T) {
		t.Parallel()
		mocks := newTestMocks()
		mocks.TournamentRepo.On("GetByID", mock.Anything, testTournamentID).Return(createTestTournament(started), nil)
		mocks.MatchRepo.On("GetByTournament", mock.Anything, testTournamentID).Return(fourPlayerBracket(), nil)

		_, err := mocks.tournamentService().Finalize(context.Background(), testTournamentID)

		assert.ErrorIs(t, err, ErrTournamentNotFinished)
	})
}

func TestTournamentService_GetTeams(t *testing.T) {
	t.Parallel()
	mocks := newTestMocks()
	mocks.TournamentRepo.On("GetTeamMembers", mock.Anything, testTournamentID).Return([]*entities.TeamMember{
		{TournamentID: testTournamentID, LeaderID: 10, TeammateID: 20, Position: 1},
		{TournamentID: testTournamentID, LeaderID: 10, TeammateID: 21, Position: 2},
		{TournamentID: testTournamentID, LeaderID: 11, TeammateID: 22, Position: 1},
	}, nil)

	teams, err := mocks.tournamentService().GetTeams(context.Background(), testTournamentID)

	require.NoError(t, err)
	assert.Equal(t, map[int64][]int64{10: {20, 21}, 11: {22}}, teams)
}

func matchIDs(matches []*entities.Match) []int64 {
	seen := map[int64]bool{}
	var ids []int64
	for _, m := range matches {
		if !seen[m.ID] {
			seen[m.ID] = true
			ids = append(ids, m.ID)
		}
	}
	return ids
}
