package e2e

import (
	"context"
	"sync"
	"team-relay/errors"
	"team-relay/infrastructure/grpc/client"
	"team-relay/protocol"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type testRelaySuite struct {
	BaseHubSuite
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, &testRelaySuite{})
}

// Scenario A: a question crosses teams and its answer comes back.
func (s *testRelaySuite) TestAskAnsweredAcrossTeams() {
	frontendTeam, backendTeam := s.Team("frontend"), s.Team("backend")
	ctx := context.Background()

	alice := s.Joined("alice", frontendTeam, client.Observers{})
	bob := s.Joined("bob", backendTeam, client.Observers{})

	type outcome struct {
		answer *protocol.Answer
		err    error
		at     time.Time
	}
	start := time.Now()
	done := make(chan outcome, 1)
	go func() {
		answer, err := alice.Ask(ctx, backendTeam, "Is the **orders** API versioned?", "markdown", 5*time.Second)
		done <- outcome{answer: answer, err: err, at: time.Now()}
	}()

	var questionID string
	s.Run("Step 1: the backend inbox holds exactly one pending question", func() {
		s.Step("Reading backend inbox")
		s.Require().Eventually(func() bool {
			inbox, err := bob.GetInbox(ctx, false)
			return err == nil && inbox.PendingCount == 1
		}, 2*time.Second, 50*time.Millisecond)

		inbox, err := bob.GetInbox(ctx, false)
		s.Require().NoError(err)
		s.Require().Len(inbox.Questions, 1)
		s.Equal("Is the **orders** API versioned?", inbox.Questions[0].Content)
		s.Equal("markdown", inbox.Questions[0].Format)
		s.Equal("alice", inbox.Questions[0].From.DisplayName)
		questionID = inbox.Questions[0].QuestionID
	})

	s.Run("Step 2: the reply resolves the ask before its deadline", func() {
		s.Step("Replying from backend")
		s.Require().NoError(bob.Reply(ctx, questionID, "Yes, under /v2", "plain"))

		result := <-done
		s.Require().NoError(result.err)
		s.Equal("Yes, under /v2", result.answer.Content)
		s.Equal("plain", result.answer.Format)
		s.Equal(questionID, result.answer.QuestionID)
		s.Less(result.at.Sub(start), 5*time.Second)
	})

	s.Run("Step 3: the answered question leaves the pending inbox", func() {
		inbox, err := bob.GetInbox(ctx, false)
		s.Require().NoError(err)
		s.Zero(inbox.PendingCount)
		s.Empty(inbox.Questions)

		inbox, err = bob.GetInbox(ctx, true)
		s.Require().NoError(err)
		s.Require().Len(inbox.Questions, 1)
		s.Equal("ANSWERED", inbox.Questions[0].Status)
	})
}

// Scenario B: a team nobody listens to never answers.
func (s *testRelaySuite) TestAskOfEmptyTeamTimesOut() {
	ctx := context.Background()
	emptyTeam := s.Team("empty")

	// The team exists but its only member is gone
	ghost := s.Joined("ghost", emptyTeam, client.Observers{})
	s.Require().NoError(ghost.Close())

	var mu sync.Mutex
	var answers []*protocol.Answer
	alice := s.Joined("alice", s.Team("solo-team"), client.Observers{
		OnAnswer: func(a *protocol.Answer) {
			mu.Lock()
			defer mu.Unlock()
			answers = append(answers, a)
		},
	})

	s.Step("Asking an empty team")
	start := time.Now()
	_, err := alice.Ask(ctx, emptyTeam, "Anyone?", "plain", 500*time.Millisecond)
	elapsed := time.Since(start)

	var timeoutErr *client.AnswerTimeoutError
	s.Require().ErrorAs(err, &timeoutErr)
	s.Require().ErrorIs(err, errors.ErrTimeout)
	s.GreaterOrEqual(elapsed, 500*time.Millisecond)
	s.Less(elapsed, time.Second)

	s.Step("Waiting for a late answer")
	time.Sleep(2 * time.Second)
	mu.Lock()
	defer mu.Unlock()
	s.Empty(answers)
}

// Scenario C: concurrent asks each time out on their own deadline.
func (s *testRelaySuite) TestConcurrentAsksTimeOutIndependently() {
	ctx := context.Background()
	silentTeam := s.Team("silent")
	s.Joined("sleeper", silentTeam, client.Observers{})
	alice := s.Joined("alice", s.Team("frontend"), client.Observers{})

	timeouts := []time.Duration{300 * time.Millisecond, 500 * time.Millisecond, 700 * time.Millisecond}
	elapsed := make([]time.Duration, len(timeouts))
	errs := make([]error, len(timeouts))

	s.Step("Asking three questions at once")
	start := time.Now()
	var wg sync.WaitGroup
	for i, timeout := range timeouts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = alice.Ask(ctx, silentTeam, "question", "plain", timeout)
			elapsed[i] = time.Since(start)
		}()
	}
	wg.Wait()

	for i, timeout := range timeouts {
		s.Require().ErrorIs(errs[i], errors.ErrTimeout)
		s.GreaterOrEqual(elapsed[i], timeout)
		s.Less(elapsed[i], timeout+150*time.Millisecond, "ask %d should end near its own deadline", i)
	}
	s.Less(elapsed[0], elapsed[1])
	s.Less(elapsed[1], elapsed[2])
}

// Scenario D: a reply arriving after the asker gave up is dropped quietly.
func (s *testRelaySuite) TestLateReplyIsDropped() {
	ctx := context.Background()
	backendTeam := s.Team("backend")

	var mu sync.Mutex
	var askerErrors, replierErrors []error
	questions := make(chan *protocol.Question, 1)

	bob := s.Joined("bob", backendTeam, client.Observers{
		OnQuestion: func(q *protocol.Question) { questions <- q },
		OnError: func(err error) {
			mu.Lock()
			defer mu.Unlock()
			replierErrors = append(replierErrors, err)
		},
	})
	alice := s.Joined("alice", s.Team("frontend"), client.Observers{
		OnError: func(err error) {
			mu.Lock()
			defer mu.Unlock()
			askerErrors = append(askerErrors, err)
		},
	})

	s.Step("Asking with a short timeout")
	_, err := alice.Ask(ctx, backendTeam, "quick question", "plain", 200*time.Millisecond)
	s.Require().ErrorIs(err, errors.ErrTimeout)

	s.Step("Replying too late")
	question := <-questions
	s.Require().NoError(bob.Reply(ctx, question.QuestionID, "sorry, too late", "plain"))

	// The hub processed the reply once the inbox round trip is back
	inbox, err := bob.GetInbox(ctx, true)
	s.Require().NoError(err)
	s.Require().Len(inbox.Questions, 1)
	s.Equal("ANSWERED", inbox.Questions[0].Status)

	s.Step("The asker is still healthy")
	time.Sleep(200 * time.Millisecond)
	other, err := alice.GetInbox(ctx, false)
	s.Require().NoError(err)
	s.Zero(other.PendingCount)

	mu.Lock()
	defer mu.Unlock()
	s.Empty(askerErrors)
	s.Empty(replierErrors)
}
