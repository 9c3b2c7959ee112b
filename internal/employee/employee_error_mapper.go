package employee

import (
	"context"
	"errors"
	"net"
	"strings"

	employeeerrors "github.com/Algoraver22/employee-hr-platform/internal/employee/errors"
	"github.com/Algoraver22/employee-hr-platform/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, mongo.ErrNoDocuments) {
		return employeeerrors.ErrEmployeeNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return employeeerrors.ErrEmployeeAlreadyExists
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "email") {
			return employeeerrors.ErrEmployeeAlreadyExists
		}
		// class 08: connection exception
		if strings.HasPrefix(pgErr.Code, "08") {
			return employeeerrors.ErrStoreUnavailable.WithCause(err)
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "email") {
		return employeeerrors.ErrEmployeeAlreadyExists
	}

	if isUnavailable(err) {
		return employeeerrors.ErrStoreUnavailable.WithCause(err)
	}

	return err
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var pgConnErr *pgconn.ConnectError
	if errors.As(err, &pgConnErr) {
		return true
	}

	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}

	if errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "bad connection") ||
		strings.Contains(errMsg, "server selection error") ||
		strings.Contains(errMsg, "sql: database is closed")
}
