package event

import (
	"context"
	"errors"
	"time"

	pb "github.com/Udonxai/weak-link/pkg/pb/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

type Handler struct {
	pb.UnimplementedBreakServiceServer
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) RecordBreak(ctx context.Context, req *pb.RecordBreakRequest) (*pb.RecordBreakResponse, error) {
	h.logger.Debug("RecordBreak",
		zap.String("user_id", req.UserId),
		zap.String("group_id", req.GroupId),
		zap.String("app_identifier", req.AppIdentifier),
	)

	in, err := protoToInput(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "can't record break: %v", err)
	}

	ev, err := h.service.RecordBreak(ctx, in)
	if err != nil {
		return nil, toStatus("can't record break", err)
	}

	return &pb.RecordBreakResponse{
		EventId:   ev.ID.String(),
		AppName:   ev.AppName,
		Timestamp: timestamppb.New(ev.Timestamp),
	}, nil
}

func (h *Handler) ListTrackedApps(ctx context.Context, req *pb.ListTrackedAppsRequest) (*pb.ListTrackedAppsResponse, error) {
	groupID, err := uuid.Parse(req.GroupId)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "can't list tracked apps: %v", ErrInvalidGroupID)
	}

	apps, err := h.service.ListTrackedApps(ctx, groupID)
	if err != nil {
		return nil, toStatus("can't list tracked apps", err)
	}

	resp := &pb.ListTrackedAppsResponse{Apps: make([]*pb.TrackedApp, 0, len(apps))}
	for _, app := range apps {
		resp.Apps = append(resp.Apps, &pb.TrackedApp{
			GroupId:       app.GroupID.String(),
			AppIdentifier: app.AppIdentifier,
			AppName:       app.DisplayName(),
			Platform:      app.Platform,
		})
	}
	return resp, nil
}

func (h *Handler) ListBreaks(ctx context.Context, req *pb.ListBreaksRequest) (*pb.ListBreaksResponse, error) {
	filter, err := protoToFilter(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "can't list breaks: %v", err)
	}

	events, err := h.service.ListBreaks(ctx, filter)
	if err != nil {
		return nil, toStatus("can't list breaks", err)
	}

	resp := &pb.ListBreaksResponse{Events: make([]*pb.BreakEvent, 0, len(events))}
	for i := range events {
		resp.Events = append(resp.Events, eventToProto(&events[i]))
	}
	return resp, nil
}

func toStatus(msg string, err error) error {
	switch {
	case errors.Is(err, ErrInvalidUserID),
		errors.Is(err, ErrInvalidGroupID),
		errors.Is(err, ErrInvalidAppIdentifier),
		errors.Is(err, ErrInvalidEventID),
		errors.Is(err, ErrInvalidTimeRange):
		return status.Errorf(codes.InvalidArgument, "%s: %v", msg, err)
	case errors.Is(err, ErrDuplicateEvent):
		return status.Errorf(codes.AlreadyExists, "%s: %v", msg, err)
	case errors.Is(err, ErrAppNotTracked):
		return status.Errorf(codes.FailedPrecondition, "%s: %v", msg, err)
	case errors.Is(err, ErrNotMember):
		return status.Errorf(codes.PermissionDenied, "%s: %v", msg, err)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s: %v", msg, err)
	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "%s: %v", msg, err)
	default:
		return status.Errorf(codes.Internal, "%s: %v", msg, err)
	}
}

func protoToInput(req *pb.RecordBreakRequest) (RecordInput, error) {
	userID, err := uuid.Parse(req.UserId)
	if err != nil {
		return RecordInput{}, ErrInvalidUserID
	}

	groupID, err := uuid.Parse(req.GroupId)
	if err != nil {
		return RecordInput{}, ErrInvalidGroupID
	}

	var eventID uuid.UUID
	if req.EventId != "" {
		eventID, err = uuid.Parse(req.EventId)
		if err != nil {
			return RecordInput{}, ErrInvalidEventID
		}
	}

	in := RecordInput{
		EventID:       eventID,
		UserID:        userID,
		GroupID:       groupID,
		AppIdentifier: req.AppIdentifier,
		AppName:       req.AppName,
	}
	if req.ObservedAt != nil {
		observed := req.ObservedAt.AsTime()
		in.ObservedAt = &observed
	}
	return in, nil
}

func protoToFilter(req *pb.ListBreaksRequest) (Filter, error) {
	filter := Filter{Limit: int(req.Limit)}

	if req.GroupId != "" {
		groupID, err := uuid.Parse(req.GroupId)
		if err != nil {
			return Filter{}, ErrInvalidGroupID
		}
		filter.GroupID = &groupID
	}
	if req.UserId != "" {
		userID, err := uuid.Parse(req.UserId)
		if err != nil {
			return Filter{}, ErrInvalidUserID
		}
		filter.UserID = &userID
	}
	filter.Since = optionalTime(req.Since)
	filter.Until = optionalTime(req.Until)

	return filter, nil
}

func optionalTime(ts *timestamppb.Timestamp) *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.AsTime()
	return &t
}

func eventToProto(ev *BreakEvent) *pb.BreakEvent {
	return &pb.BreakEvent{
		EventId:       ev.ID.String(),
		UserId:        ev.UserID.String(),
		GroupId:       ev.GroupID.String(),
		AppIdentifier: ev.AppIdentifier,
		AppName:       ev.AppName,
		Timestamp:     timestamppb.New(ev.Timestamp),
	}
}
