package event

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	pb "github.com/Udonxai/weak-link/pkg/pb/events"
)

func startServer(t *testing.T, svc *Service) *Client {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	pb.RegisterBreakServiceServer(srv, NewHandler(svc, zap.NewNop()))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	client, err := Dial("passthrough:///bufnet", zap.NewNop(),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestGRPC_RecordAndListBreaks(t *testing.T) {
	repo := &memRepository{}
	svc := newTestService(repo, trackedSource("com.zhiliaoapp.musically"), &fakeMembers{}, &fakePublisher{})
	client := startServer(t, svc)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userID, groupID := uuid.New(), uuid.New()
	observed := fixedNow.Add(-time.Second)
	ev, err := client.RecordBreak(ctx, RecordInput{
		UserID:        userID,
		GroupID:       groupID,
		AppIdentifier: "com.zhiliaoapp.musically",
		ObservedAt:    &observed,
	})
	if err != nil {
		t.Fatalf("RecordBreak: %v", err)
	}
	if ev.AppName != "TikTok" {
		t.Fatalf("expected TikTok, got %s", ev.AppName)
	}
	if !ev.Timestamp.Equal(fixedNow) {
		t.Fatalf("expected server timestamp, got %v", ev.Timestamp)
	}

	events, err := client.ListBreaks(ctx, Filter{GroupID: &groupID})
	if err != nil {
		t.Fatalf("ListBreaks: %v", err)
	}
	if len(events) != 1 || events[0].ID != ev.ID || events[0].UserID != userID {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestGRPC_RecordBreak_ResentIDIsDuplicate(t *testing.T) {
	repo := &memRepository{}
	svc := newTestService(repo, trackedSource("com.instagram.android"), &fakeMembers{}, &fakePublisher{})
	client := startServer(t, svc)

	in := RecordInput{
		EventID:       uuid.New(),
		UserID:        uuid.New(),
		GroupID:       uuid.New(),
		AppIdentifier: "com.instagram.android",
	}

	ev, err := client.RecordBreak(context.Background(), in)
	if err != nil {
		t.Fatalf("RecordBreak: %v", err)
	}
	if ev.ID != in.EventID {
		t.Fatalf("expected id %s, got %s", in.EventID, ev.ID)
	}

	_, err = client.RecordBreak(context.Background(), in)
	if !errors.Is(err, ErrDuplicateEvent) {
		t.Fatalf("expected ErrDuplicateEvent, got %v", err)
	}
	if repo.count() != 1 {
		t.Fatalf("expected 1 stored event, got %d", repo.count())
	}
}

func TestGRPC_ListTrackedApps(t *testing.T) {
	svc := newTestService(&memRepository{}, trackedSource("com.instagram.android", "com.snapchat.android"), &fakeMembers{}, &fakePublisher{})
	client := startServer(t, svc)

	groupID := uuid.New()
	apps, err := client.ListTrackedApps(context.Background(), groupID)
	if err != nil {
		t.Fatalf("ListTrackedApps: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("expected 2 apps, got %d", len(apps))
	}
	if apps[0].GroupID != groupID || apps[0].AppName != "Instagram" || apps[1].AppName != "Snapchat" {
		t.Fatalf("unexpected apps: %+v", apps)
	}
}

func TestGRPC_ErrorCodes(t *testing.T) {
	svc := newTestService(&memRepository{}, trackedSource("a"), &fakeMembers{
		IsMemberFn: func(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
			return userID != uuid.Nil && groupID != uuid.Nil, nil
		},
	}, &fakePublisher{})
	client := startServer(t, svc)
	rpc := pb.NewBreakServiceClient(client.Conn())

	tests := []struct {
		name string
		req  *pb.RecordBreakRequest
		want codes.Code
	}{
		{
			name: "untracked app",
			req:  &pb.RecordBreakRequest{UserId: uuid.NewString(), GroupId: uuid.NewString(), AppIdentifier: "b"},
			want: codes.FailedPrecondition,
		},
		{
			name: "bad user id",
			req:  &pb.RecordBreakRequest{UserId: "nope", GroupId: uuid.NewString(), AppIdentifier: "a"},
			want: codes.InvalidArgument,
		},
		{
			name: "bad event id",
			req:  &pb.RecordBreakRequest{EventId: "nope", UserId: uuid.NewString(), GroupId: uuid.NewString(), AppIdentifier: "a"},
			want: codes.InvalidArgument,
		},
		{
			name: "missing app",
			req:  &pb.RecordBreakRequest{UserId: uuid.NewString(), GroupId: uuid.NewString()},
			want: codes.InvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rpc.RecordBreak(context.Background(), tt.req)
			if got := status.Code(err); got != tt.want {
				t.Fatalf("expected %s, got %s (%v)", tt.want, got, err)
			}
		})
	}
}

func TestGRPC_ListBreaks_InvalidRange(t *testing.T) {
	svc := newTestService(&memRepository{}, trackedSource("a"), &fakeMembers{}, &fakePublisher{})
	client := startServer(t, svc)

	now := time.Now()
	_, err := client.ListBreaks(context.Background(), Filter{Since: &now, Until: &now})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}
