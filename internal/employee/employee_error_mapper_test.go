package employee

import (
	"errors"
	"fmt"
	"testing"

	employeeerrors "github.com/Algoraver22/employee-hr-platform/internal/employee/errors"
	"github.com/Algoraver22/employee-hr-platform/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

func TestMapRepositoryError(t *testing.T) {
	assert.NoError(t, mapRepositoryError(nil))

	assert.ErrorIs(t, mapRepositoryError(gorm.ErrRecordNotFound), employeeerrors.ErrEmployeeNotFound)
	assert.ErrorIs(t, mapRepositoryError(fmt.Errorf("find: %w", mongo.ErrNoDocuments)), employeeerrors.ErrEmployeeNotFound)

	dup := &pgconn.PgError{Code: "23505", ConstraintName: "uq_employees_email"}
	assert.ErrorIs(t, mapRepositoryError(dup), employeeerrors.ErrEmployeeAlreadyExists)

	mongoDup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, mapRepositoryError(mongoDup), employeeerrors.ErrEmployeeAlreadyExists)

	connErr := &pgconn.PgError{Code: "08006"}
	assert.True(t, apperror.Is(mapRepositoryError(connErr), apperror.CodeServiceUnavailable))
	assert.True(t, apperror.Is(mapRepositoryError(errors.New("dial tcp: connection refused")), apperror.CodeServiceUnavailable))
	assert.ErrorIs(t, mapRepositoryError(connErr), employeeerrors.ErrStoreUnavailable)
	assert.ErrorIs(t, mapRepositoryError(connErr), connErr)

	other := errors.New("syntax error")
	assert.Equal(t, other, mapRepositoryError(other))

	// already mapped errors pass through untouched
	assert.ErrorIs(t, mapRepositoryError(employeeerrors.ErrInvalidSalary), employeeerrors.ErrInvalidSalary)
}
