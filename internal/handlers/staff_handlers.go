package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"hardwarestore/internal/common"
	"hardwarestore/internal/models"
	"hardwarestore/internal/services"
)

// StaffHandlers serves /api/staff.
type StaffHandlers struct {
	staff services.StaffService
}

func NewStaffHandlers(staff services.StaffService) *StaffHandlers {
	return &StaffHandlers{staff: staff}
}

type CreateStaffRequest struct {
	Name       string           `json:"name" validate:"required"`
	Email      *string          `json:"email" validate:"omitempty,email"`
	Phone      *string          `json:"phone"`
	Position   *string          `json:"position"`
	Department *string          `json:"department"`
	HireDate   *string          `json:"hire_date"`
	Salary     *decimal.Decimal `json:"salary"`
	Status     string           `json:"status" validate:"omitempty,oneof=active inactive terminated"`
}

type StatusRequest struct {
	Status models.StaffStatus `json:"status" validate:"required,oneof=active inactive terminated"`
}

func parseHireDate(raw *string) (*time.Time, error) {
	value := common.OptionalString(raw)
	if value == nil {
		return nil, nil
	}
	date, err := common.ValidateDate(*value, "hire_date")
	if err != nil {
		return nil, err
	}
	return &date, nil
}

func (h *StaffHandlers) ListStaff(c echo.Context) error {
	staff, err := h.staff.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(staff))
}

func (h *StaffHandlers) ActiveStaff(c echo.Context) error {
	staff, err := h.staff.Active(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(staff))
}

func (h *StaffHandlers) GetStaff(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	staff, err := h.staff.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, staff)
}

func (h *StaffHandlers) CreateStaff(c echo.Context) error {
	var req CreateStaffRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	hireDate, err := parseHireDate(req.HireDate)
	if err != nil {
		return err
	}

	staff := &models.Staff{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Position:   req.Position,
		Department: req.Department,
		HireDate:   hireDate,
		Salary:     req.Salary,
		Status:     models.StaffStatus(req.Status),
	}
	if err := h.staff.Create(c.Request().Context(), staff); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, staff)
}

// UpdateStaffRequest mirrors models.StaffUpdate with the hire date as YYYY-MM-DD text.
type UpdateStaffRequest struct {
	Name       *string             `json:"name"`
	Email      *string             `json:"email" validate:"omitempty,email"`
	Phone      *string             `json:"phone"`
	Position   *string             `json:"position"`
	Department *string             `json:"department"`
	HireDate   *string             `json:"hire_date"`
	Salary     *decimal.Decimal    `json:"salary"`
	Status     *models.StaffStatus `json:"status" validate:"omitempty,oneof=active inactive terminated"`
}

func (h *StaffHandlers) UpdateStaff(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req UpdateStaffRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	hireDate, err := parseHireDate(req.HireDate)
	if err != nil {
		return err
	}

	staff, err := h.staff.Update(c.Request().Context(), id, models.StaffUpdate{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Position:   req.Position,
		Department: req.Department,
		HireDate:   hireDate,
		Salary:     req.Salary,
		Status:     req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, staff)
}

func (h *StaffHandlers) UpdateStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req StatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	staff, err := h.staff.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, staff)
}

func (h *StaffHandlers) DeleteStaff(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.staff.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Staff member deleted successfully"})
}

func (h *StaffHandlers) ByDepartment(c echo.Context) error {
	staff, err := h.staff.ByDepartment(c.Request().Context(), c.Param("department"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(staff))
}

func (h *StaffHandlers) Performance(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	performance, err := h.staff.Performance(c.Request().Context(), &id)
	if err != nil {
		return err
	}
	if len(performance) == 0 {
		return common.NotFound("staff member")
	}
	return c.JSON(http.StatusOK, performance[0])
}
