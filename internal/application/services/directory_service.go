package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/handyapp/gateway/internal/core/domain/apperr"
	"github.com/handyapp/gateway/internal/core/domain/directory"
	"github.com/handyapp/gateway/internal/core/ports"
	"github.com/handyapp/gateway/internal/infrastructure/metrics"
)

// DirectoryService registers providers as a type index plus a detail blob
// and looks them up with a single remote query.
type DirectoryService struct {
	remote ports.RemoteStore
	newID  func() string
	logger *logrus.Logger
}

func NewDirectoryService(remote ports.RemoteStore, logger *logrus.Logger) *DirectoryService {
	return &DirectoryService{remote: remote, newID: uuid.NewString, logger: logger}
}

// Register performs the two writes independently. The index write is not
// undone when the detail write fails, so a reader may briefly resolve a type
// to an id with no detail blob; that state is reported, logged and counted.
func (s *DirectoryService) Register(ctx context.Context, req *directory.RegisterServiceRequest) (*directory.RegistrationResult, error) {
	if req == nil {
		return nil, apperr.Validation("request is required")
	}
	if missing := req.MissingFields(); len(missing) > 0 {
		return nil, apperr.Validation("missing required fields: " + strings.Join(missing, ", "))
	}

	id := s.newID()
	record := &directory.ServiceRecord{
		ID:           id,
		Name:         req.Name,
		Type:         req.Type,
		Location:     req.Location,
		Cost:         req.Cost,
		Description:  req.Description,
		Availability: directory.Unavailable,
	}
	blob, err := record.Marshal()
	if err != nil {
		return nil, apperr.Internal("failed to encode service record", err)
	}

	result := &directory.RegistrationResult{ServiceID: id}
	indexErr := s.remote.PutService(ctx, req.Type, id)
	result.TypeIndex = writeStep(req.Type, indexErr)
	detailErr := s.remote.PutService(ctx, id, blob)
	result.Detail = writeStep(id, detailErr)

	if result.Complete() {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"service_id": id, "type": req.Type}).Info("service registered")
		}
		return result, nil
	}

	fields := logrus.Fields{
		"service_id": id,
		"type":       req.Type,
		"index_ok":   result.TypeIndex.OK,
		"detail_ok":  result.Detail.OK,
	}
	if result.TypeIndex.OK != result.Detail.OK {
		metrics.DirectoryPartialWrite()
	}
	cause := indexErr
	if cause == nil {
		cause = detailErr
	}
	if s.logger != nil {
		s.logger.WithFields(fields).WithError(cause).Warn("service registration incomplete")
	}
	return result, apperr.PartialWrite(
		fmt.Sprintf("service registration incomplete (type index ok=%t, detail ok=%t)", result.TypeIndex.OK, result.Detail.OK),
		cause,
	)
}

func writeStep(key string, err error) directory.WriteStep {
	if err != nil {
		return directory.WriteStep{Key: key, OK: false, Error: err.Error()}
	}
	return directory.WriteStep{Key: key, OK: true}
}

// Lookup shapes the remote provider payload into the response envelope.
// Lookups are never cached.
func (s *DirectoryService) Lookup(ctx context.Context, req *directory.LookupRequest) (*directory.LookupResult, error) {
	if req == nil || strings.TrimSpace(req.Type) == "" {
		return nil, apperr.Validation("type is required")
	}

	payload, found, err := s.remote.GetServiceProvider(ctx, req.Type, req.Location)
	if err != nil {
		if apperr.As(err) == nil {
			err = apperr.RemoteUnavailable("service provider lookup failed", err)
		}
		return nil, err
	}
	if !found || len(payload) == 0 {
		return &directory.LookupResult{Status: directory.StatusNoProvider, Error: directory.MsgNoRemoteData}, nil
	}

	var p directory.ProviderPayload
	if err := json.Unmarshal(payload, &p); err != nil || p == nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"type": req.Type}).WithError(err).Warn("unreadable provider payload")
		}
		return &directory.LookupResult{Status: directory.StatusNoProvider, Error: directory.MsgNotFound}, nil
	}

	if st, ok := p.Status(); ok && st == directory.StatusFound {
		return &directory.LookupResult{Status: directory.StatusFound, Data: p}, nil
	}
	return &directory.LookupResult{Status: directory.StatusNoProvider, Data: p, Error: directory.MsgNotFound}, nil
}

var _ ports.DirectoryService = (*DirectoryService)(nil)
