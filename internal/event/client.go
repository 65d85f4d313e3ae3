package event

import (
	"context"
	"fmt"
	"time"

	"github.com/Udonxai/weak-link/internal/watchlist"
	pb "github.com/Udonxai/weak-link/pkg/pb/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Client talks to the event service. It is the watch-list source and break
// recorder of device agents.
type Client struct {
	conn   *grpc.ClientConn
	rpc    pb.BreakServiceClient
	logger *zap.Logger
}

func Dial(addr string, logger *zap.Logger, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create event service client: %w", err)
	}

	return &Client{
		conn:   conn,
		rpc:    pb.NewBreakServiceClient(conn),
		logger: logger,
	}, nil
}

func (c *Client) Conn() *grpc.ClientConn {
	return c.conn
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) RecordBreak(ctx context.Context, in RecordInput) (*BreakEvent, error) {
	req := &pb.RecordBreakRequest{
		UserId:        in.UserID.String(),
		GroupId:       in.GroupID.String(),
		AppIdentifier: in.AppIdentifier,
		AppName:       in.AppName,
	}
	if in.EventID != uuid.Nil {
		req.EventId = in.EventID.String()
	}
	if in.ObservedAt != nil {
		req.ObservedAt = timestamppb.New(*in.ObservedAt)
	}

	resp, err := c.rpc.RecordBreak(ctx, req)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, fmt.Errorf("record break %s: %w", in.EventID, ErrDuplicateEvent)
		}
		return nil, fmt.Errorf("record break: %w", err)
	}

	eventID, err := uuid.Parse(resp.EventId)
	if err != nil {
		return nil, fmt.Errorf("record break: bad event id %q: %w", resp.EventId, err)
	}

	return &BreakEvent{
		ID:            eventID,
		UserID:        in.UserID,
		GroupID:       in.GroupID,
		AppIdentifier: in.AppIdentifier,
		AppName:       resp.AppName,
		Timestamp:     resp.Timestamp.AsTime(),
		ObservedAt:    in.ObservedAt,
	}, nil
}

// ListTrackedApps implements watchlist.Source.
func (c *Client) ListTrackedApps(ctx context.Context, groupID uuid.UUID) ([]watchlist.TrackedApp, error) {
	resp, err := c.rpc.ListTrackedApps(ctx, &pb.ListTrackedAppsRequest{GroupId: groupID.String()})
	if err != nil {
		return nil, fmt.Errorf("list tracked apps: %w", err)
	}

	apps := make([]watchlist.TrackedApp, 0, len(resp.Apps))
	for _, app := range resp.Apps {
		if app == nil {
			continue
		}
		apps = append(apps, watchlist.TrackedApp{
			GroupID:       groupID,
			AppIdentifier: app.AppIdentifier,
			AppName:       app.AppName,
			Platform:      app.Platform,
		})
	}
	return apps, nil
}

func (c *Client) ListBreaks(ctx context.Context, filter Filter) ([]BreakEvent, error) {
	req := &pb.ListBreaksRequest{Limit: int32(filter.Limit)}
	if filter.GroupID != nil {
		req.GroupId = filter.GroupID.String()
	}
	if filter.UserID != nil {
		req.UserId = filter.UserID.String()
	}
	if filter.Since != nil {
		req.Since = timestamppb.New(*filter.Since)
	}
	if filter.Until != nil {
		req.Until = timestamppb.New(*filter.Until)
	}

	resp, err := c.rpc.ListBreaks(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list breaks: %w", err)
	}

	events := make([]BreakEvent, 0, len(resp.Events))
	for _, e := range resp.Events {
		ev, err := protoToEvent(e)
		if err != nil {
			c.logger.Warn("Skipping malformed event", zap.Error(err))
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func protoToEvent(e *pb.BreakEvent) (BreakEvent, error) {
	id, err := uuid.Parse(e.EventId)
	if err != nil {
		return BreakEvent{}, fmt.Errorf("bad event id: %w", err)
	}
	userID, err := uuid.Parse(e.UserId)
	if err != nil {
		return BreakEvent{}, ErrInvalidUserID
	}
	groupID, err := uuid.Parse(e.GroupId)
	if err != nil {
		return BreakEvent{}, ErrInvalidGroupID
	}

	var ts time.Time
	if e.Timestamp != nil {
		ts = e.Timestamp.AsTime()
	}
	return BreakEvent{
		ID:            id,
		UserID:        userID,
		GroupID:       groupID,
		AppIdentifier: e.AppIdentifier,
		AppName:       e.AppName,
		Timestamp:     ts,
	}, nil
}
