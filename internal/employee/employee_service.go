package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	employeeerrors "github.com/Algoraver22/employee-hr-platform/internal/employee/errors"
	"github.com/Algoraver22/employee-hr-platform/internal/events"
	"github.com/Algoraver22/employee-hr-platform/internal/messaging/kafka"
	"github.com/Algoraver22/employee-hr-platform/internal/profileimage"
	"github.com/Algoraver22/employee-hr-platform/internal/shared/apperror"
	"github.com/Algoraver22/employee-hr-platform/internal/shared/contextutil"
	"github.com/Algoraver22/employee-hr-platform/internal/shared/listcache"
	"github.com/Algoraver22/employee-hr-platform/internal/shared/response"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	ListCacheKeyPrefix  = "employees:list"
	DefaultListCacheTTL = 5 * time.Minute

	// sharedLoadTimeout bounds a collapsed store read once it no longer
	// follows the leading caller's cancellation.
	sharedLoadTimeout = 10 * time.Second

	lifecycleAggregate = "employee"
)

var errImagesUnsupported = apperror.New(
	apperror.CodeInvalidInput,
	"Profile image uploads are not enabled",
	http.StatusBadRequest,
)

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	List(ctx context.Context, q ListQuery) (EmployeeListResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	Create(ctx context.Context, req EmployeeRequest) (EmployeeResponse, error)
	Update(ctx context.Context, id string, req EmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, id string) (bool, error)
	OpenProfileImage(ctx context.Context, id string) (io.ReadCloser, string, error)
}

// Dependencies wires a Service. DB is nil for stores that cannot join a SQL
// transaction; lifecycle events then go through Publisher instead of Outbox.
type Dependencies struct {
	DB           *sql.DB
	Repo         Repository
	Images       profileimage.Store
	Outbox       kafka.OutboxRepository
	Publisher    EventPublisher
	Redis        *redis.Client
	ListCacheTTL time.Duration
}

type service struct {
	db        *sql.DB
	repo      Repository
	images    profileimage.Store
	outbox    kafka.OutboxRepository
	publisher EventPublisher
	rdb       *redis.Client
	cacheTTL  time.Duration
	sf        *singleflight.Group
	logger    *zap.Logger
}

func NewService(db *sql.DB, repo Repository, images profileimage.Store, rdb *redis.Client, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, images, nil, rdb, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	images profileimage.Store,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	return New(Dependencies{
		DB:     db,
		Repo:   repo,
		Images: images,
		Outbox: outboxRepo,
		Redis:  rdb,
	}, logger...)
}

func New(deps Dependencies, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}

	ttl := deps.ListCacheTTL
	if ttl <= 0 {
		ttl = DefaultListCacheTTL
	}

	publisher := deps.Publisher
	if publisher == nil {
		publisher = noopEventPublisher{}
	}

	return &service{
		db:        deps.DB,
		repo:      deps.Repo,
		images:    deps.Images,
		outbox:    deps.Outbox,
		publisher: publisher,
		rdb:       deps.Redis,
		cacheTTL:  ttl,
		sf:        &singleflight.Group{},
		logger:    l,
	}
}

func (s *service) List(ctx context.Context, q ListQuery) (EmployeeListResponse, error) {
	q = q.Normalize()
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("list employees requested",
		zap.String("search", q.Search),
		zap.Int("page", q.Page),
		zap.Int("limit", q.Limit),
	)

	if s.rdb == nil {
		return s.listFromStore(ctx, q)
	}

	gen, err := listcache.Current(ctx, s.rdb)
	if err != nil {
		log.Warn("list cache generation unavailable, reading store", zap.Error(err))
		return s.listFromStore(ctx, q)
	}

	cacheKey := ListCacheKey(gen, q)
	if cached, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp EmployeeListResponse
		if json.Unmarshal(cached, &resp) == nil {
			return resp, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Warn("list cache read failed", zap.String("key", cacheKey), zap.Error(err))
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()

		resp, err := s.listFromStore(loadCtx, q)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(loadCtx, cacheKey, data, s.cacheTTL).Err(); err != nil {
				log.Warn("list cache write failed", zap.String("key", cacheKey), zap.Error(err))
			}
		}
		return resp, nil
	})
	if err != nil {
		return EmployeeListResponse{}, err
	}

	return v.(EmployeeListResponse), nil
}

// ListCacheKey is the Redis key a listing page is cached under.
func ListCacheKey(gen int64, q ListQuery) string {
	return listcache.Key(ListCacheKeyPrefix, gen,
		strings.ToLower(q.Search),
		strconv.Itoa(q.Page),
		strconv.Itoa(q.Limit),
	)
}

func (s *service) listFromStore(ctx context.Context, q ListQuery) (EmployeeListResponse, error) {
	res, err := s.repo.List(ctx, q)
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("list employees failed", zap.Error(err))
		return EmployeeListResponse{}, mapRepositoryError(err)
	}

	return EmployeeListResponse{
		Employees:  mapToListResponse(res.Employees),
		Pagination: response.NewPaginationMeta(res.Total, q.Page, q.Limit),
	}, nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	s.logger.Debug("get employee by id requested", zap.String("employee_id", id))

	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("get employee by id failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*empl), nil
}

func (s *service) Create(ctx context.Context, req EmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("email", req.Email),
		zap.String("department", req.Department),
	)

	fields, err := validateRequest(req)
	if err != nil {
		return EmployeeResponse{}, err
	}

	empl := &Employee{
		ID:         s.repo.NewID(),
		Name:       fields.Name,
		Email:      fields.Email,
		Phone:      fields.Phone,
		Department: fields.Department,
		Salary:     fields.Salary,
	}

	if req.ProfileImage != nil {
		ref, err := s.saveImage(ctx, empl.ID, req.ProfileImage)
		if err != nil {
			return EmployeeResponse{}, err
		}
		empl.ProfileImage = ref
	}

	err = s.withinTx(ctx, func(repo Repository, outbox kafka.OutboxRepository) error {
		if err := repo.Create(ctx, empl); err != nil {
			s.logger.Error("create employee persist failed", zap.String("request_id", rid), zap.Error(err))
			return mapRepositoryError(err)
		}
		return s.queueEvent(ctx, outbox, events.EmployeeCreated, *empl)
	})
	if err != nil {
		if empl.ProfileImage != "" {
			s.removeImage(ctx, empl.ProfileImage)
		}
		return EmployeeResponse{}, err
	}

	s.afterMutation(ctx, events.EmployeeCreated, *empl)
	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID),
	)

	return mapToResponse(*empl), nil
}

func (s *service) Update(ctx context.Context, id string, req EmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("update employee requested",
		zap.String("request_id", rid),
		zap.String("employee_id", id),
	)

	fields, err := validateRequest(req)
	if err != nil {
		return EmployeeResponse{}, err
	}

	var (
		empl     *Employee
		newImage string
		oldImage string
	)
	err = s.withinTx(ctx, func(repo Repository, outbox kafka.OutboxRepository) error {
		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			s.logger.Warn("update employee fetch existing failed", zap.String("employee_id", id), zap.Error(err))
			return mapRepositoryError(err)
		}

		existing.Name = fields.Name
		existing.Email = fields.Email
		existing.Phone = fields.Phone
		existing.Department = fields.Department
		existing.Salary = fields.Salary

		if req.ProfileImage != nil {
			ref, err := s.saveImage(ctx, existing.ID, req.ProfileImage)
			if err != nil {
				return err
			}
			newImage = ref
			oldImage = existing.ProfileImage
			existing.ProfileImage = ref
		}

		if err := repo.Update(ctx, existing); err != nil {
			s.logger.Error("update employee persist failed", zap.String("employee_id", id), zap.Error(err))
			return mapRepositoryError(err)
		}

		empl = existing
		return s.queueEvent(ctx, outbox, events.EmployeeUpdated, *existing)
	})
	if err != nil {
		if newImage != "" {
			s.removeImage(ctx, newImage)
		}
		return EmployeeResponse{}, err
	}

	if oldImage != "" && oldImage != newImage {
		s.removeImage(ctx, oldImage)
	}

	s.afterMutation(ctx, events.EmployeeUpdated, *empl)
	s.logger.Info("update employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", id),
	)

	return mapToResponse(*empl), nil
}

// Delete removes the record. An unknown id is not an error; the result
// reports whether anything was removed.
func (s *service) Delete(ctx context.Context, id string) (bool, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("delete employee requested",
		zap.String("request_id", rid),
		zap.String("employee_id", id),
	)

	var removed *Employee
	err := s.withinTx(ctx, func(repo Repository, outbox kafka.OutboxRepository) error {
		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			mapped := mapRepositoryError(err)
			if errors.Is(mapped, employeeerrors.ErrEmployeeNotFound) {
				return nil
			}
			return mapped
		}

		deleted, err := repo.Delete(ctx, id)
		if err != nil {
			s.logger.Error("delete employee failed", zap.String("employee_id", id), zap.Error(err))
			return mapRepositoryError(err)
		}
		if !deleted {
			return nil
		}

		removed = existing
		return s.queueEvent(ctx, outbox, events.EmployeeDeleted, *existing)
	})
	if err != nil {
		return false, err
	}

	if removed == nil {
		s.logger.Info("delete employee no-op, record absent", zap.String("employee_id", id))
		return false, nil
	}

	if removed.ProfileImage != "" {
		s.removeImage(ctx, removed.ProfileImage)
	}

	s.afterMutation(ctx, events.EmployeeDeleted, *removed)
	s.logger.Info("delete employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", id),
	)
	return true, nil
}

func (s *service) OpenProfileImage(ctx context.Context, id string) (io.ReadCloser, string, error) {
	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, "", mapRepositoryError(err)
	}
	if empl.ProfileImage == "" || s.images == nil {
		return nil, "", employeeerrors.ErrNoProfileImage
	}

	rc, contentType, err := s.images.Open(ctx, empl.ProfileImage)
	if err != nil {
		if errors.Is(err, profileimage.ErrImageNotFound) {
			return nil, "", employeeerrors.ErrNoProfileImage
		}
		return nil, "", err
	}
	return rc, contentType, nil
}

// withinTx runs fn in one SQL transaction together with the outbox. Without a
// SQL database fn runs directly and outbox is nil.
func (s *service) withinTx(ctx context.Context, fn func(repo Repository, outbox kafka.OutboxRepository) error) error {
	if s.db == nil {
		return fn(s.repo, nil)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("begin tx failed", zap.String("request_id", contextutil.GetRequestID(ctx)), zap.Error(err))
		return mapRepositoryError(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	var outbox kafka.OutboxRepository
	if s.outbox != nil {
		outbox = s.outbox.WithTx(tx)
	}

	if err := fn(qtx, outbox); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.String("request_id", contextutil.GetRequestID(ctx)), zap.Error(err))
		return mapRepositoryError(err)
	}
	return nil
}

func (s *service) queueEvent(ctx context.Context, outbox kafka.OutboxRepository, eventType string, empl Employee) error {
	if outbox == nil {
		return nil
	}

	event := newLifecycleEvent(ctx, eventType, empl)
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     event.RequestID,
		AggregateType: lifecycleAggregate,
		AggregateID:   empl.ID,
		EventType:     eventType,
		Topic:         events.EmployeeLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("outbox persist failed",
			zap.String("employee_id", empl.ID),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return mapRepositoryError(err)
	}
	return nil
}

// afterMutation runs once the write is durable: the listing generation moves
// forward and, without an outbox, the event is published directly.
func (s *service) afterMutation(ctx context.Context, eventType string, empl Employee) {
	if s.rdb != nil {
		if _, err := listcache.Bump(ctx, s.rdb); err != nil {
			s.logger.Error("failed to invalidate employee list cache",
				zap.String("key", listcache.GenerationKey),
				zap.Error(err),
			)
		}
	}

	if s.outbox != nil && s.db != nil {
		s.logger.Debug("lifecycle event queued in outbox",
			zap.String("employee_id", empl.ID),
			zap.String("event_type", eventType),
		)
		return
	}

	if err := s.publisher.PublishLifecycle(ctx, newLifecycleEvent(ctx, eventType, empl)); err != nil {
		s.logger.Error("publish lifecycle event failed",
			zap.String("employee_id", empl.ID),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func (s *service) saveImage(ctx context.Context, employeeID string, r io.Reader) (string, error) {
	if s.images == nil {
		return "", errImagesUnsupported
	}

	ref, err := s.images.Save(ctx, employeeID, r)
	if err != nil {
		s.logger.Warn("save profile image failed", zap.String("employee_id", employeeID), zap.Error(err))
		return "", err
	}
	return ref, nil
}

func (s *service) removeImage(ctx context.Context, ref string) {
	if s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, ref); err != nil {
		s.logger.Warn("remove profile image failed", zap.String("ref", ref), zap.Error(err))
	}
}

func newLifecycleEvent(ctx context.Context, eventType string, empl Employee) events.EmployeeLifecycleEvent {
	return events.EmployeeLifecycleEvent{
		EventType:  eventType,
		RequestID:  contextutil.GetRequestID(ctx),
		EmployeeID: empl.ID,
		Department: empl.Department,
		OccurredAt: time.Now().UTC(),
	}
}

type validatedFields struct {
	Name       string
	Email      string
	Phone      string
	Department string
	Salary     decimal.Decimal
}

func validateRequest(req EmployeeRequest) (validatedFields, error) {
	f := validatedFields{
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.TrimSpace(req.Email),
		Phone:      strings.TrimSpace(req.Phone),
		Department: strings.TrimSpace(req.Department),
	}

	switch {
	case f.Name == "":
		return f, apperror.RequiredField("Name")
	case f.Email == "":
		return f, apperror.RequiredField("Email")
	case f.Phone == "":
		return f, apperror.RequiredField("Phone")
	case f.Department == "":
		return f, apperror.RequiredField("Department")
	case strings.TrimSpace(string(req.Salary)) == "":
		return f, apperror.RequiredField("Salary")
	}

	salary, err := decimal.NewFromString(strings.TrimSpace(string(req.Salary)))
	if err != nil || salary.IsNegative() {
		return f, employeeerrors.ErrInvalidSalary
	}
	f.Salary = salary
	return f, nil
}

func mapToResponse(empl Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:           empl.ID,
		Name:         empl.Name,
		Email:        empl.Email,
		Phone:        empl.Phone,
		Department:   empl.Department,
		Salary:       empl.Salary.StringFixed(2),
		ProfileImage: empl.ProfileImage,
		CreatedAt:    empl.CreatedAt,
		UpdatedAt:    empl.UpdatedAt,
	}
}

func mapToListResponse(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = mapToResponse(e)
	}
	return res
}
