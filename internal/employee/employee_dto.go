package employee

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/Algoraver22/employee-hr-platform/internal/shared/response"
)

// SalaryValue accepts both "5000" and 5000 in JSON bodies and plain text in
// multipart forms.
type SalaryValue string

func (s *SalaryValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = SalaryValue(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = SalaryValue(num.String())
	return nil
}

// EmployeeRequest carries a full record payload. Create and Update take the
// same shape; Update replaces every field wholesale.
type EmployeeRequest struct {
	Name       string      `form:"name" json:"name" binding:"required"`
	Email      string      `form:"email" json:"email" binding:"required,email"`
	Phone      string      `form:"phone" json:"phone" binding:"required"`
	Department string      `form:"department" json:"department" binding:"required"`
	Salary     SalaryValue `form:"salary" json:"salary" binding:"required,numeric"`

	// ProfileImage is the optional uploaded binary.
	ProfileImage io.Reader `form:"-" json:"-"`
}

type EmployeeResponse struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Department   string    `json:"department"`
	Salary       string    `json:"salary"`
	ProfileImage string    `json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type EmployeeListResponse struct {
	Employees  []EmployeeResponse      `json:"employees"`
	Pagination response.PaginationMeta `json:"pagination"`
}

type DeleteEmployeeResponse struct {
	Deleted bool `json:"deleted"`
}
