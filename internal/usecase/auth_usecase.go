package usecase

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"canteen/internal/domain/model"
	repo "canteen/internal/repository"
)

const minPasswordLength = 8

type AuthUsecase struct {
	students repo.StudentRepository
	canteens repo.CanteenRepository
	admins   repo.AdminRepository
	hasher   PasswordHasher
	issuer   AccessTokenIssuer
	clock    Clock
}

// DI
func NewAuthUsecase(
	students repo.StudentRepository,
	canteens repo.CanteenRepository,
	admins repo.AdminRepository,
	hasher PasswordHasher,
	issuer AccessTokenIssuer,
	clock Clock,
) *AuthUsecase {
	return &AuthUsecase{
		students: students,
		canteens: canteens,
		admins:   admins,
		hasher:   hasher,
		issuer:   issuer,
		clock:    clock,
	}
}

type TokenOutput struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type StudentDTO struct {
	ID    int64  `json:"id"`
	USN   string `json:"usn"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CanteenDTO struct {
	ID             int64                `json:"id"`
	CanteenID      string               `json:"canteen_id"`
	Name           string               `json:"name"`
	Email          string               `json:"email"`
	Status         string               `json:"status"`
	ApprovalStatus string               `json:"approval_status"`
	OperatingHours model.OperatingHours `json:"operating_hours"`
}

type StudentAuthOutput struct {
	Student StudentDTO  `json:"student"`
	Token   TokenOutput `json:"token"`
}

type CanteenAuthOutput struct {
	Canteen         CanteenDTO  `json:"canteen"`
	Token           TokenOutput `json:"token"`
	PendingApproval bool        `json:"pending_approval"`
}

type AdminAuthOutput struct {
	AdminID int64       `json:"admin_id"`
	Email   string      `json:"email"`
	Token   TokenOutput `json:"token"`
}

type RegisterStudentInput struct {
	USN      string
	Name     string
	Email    string
	Password string
}

type RegisterCanteenInput struct {
	CanteenID string
	Name      string
	Email     string
	Password  string
}

// USN/店舗コード か email のどちらかでログインできる
type LoginInput struct {
	Key      string
	Email    string
	Password string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(key, name, email, password string) error {
	if key == "" || strings.TrimSpace(name) == "" {
		return NewHTTPError(http.StatusBadRequest, "validation error")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	if len(password) < minPasswordLength {
		return NewHTTPError(http.StatusBadRequest, "password too short")
	}
	return nil
}

func (u *AuthUsecase) token(id int64, role model.Role, ref string) (TokenOutput, error) {
	tok, exp, err := u.issuer.Issue(id, role, ref, u.clock.Now())
	if err != nil {
		return TokenOutput{}, NewHTTPError(http.StatusInternalServerError, "token error")
	}
	return TokenOutput{AccessToken: tok, ExpiresAt: exp}, nil
}

func (u *AuthUsecase) RegisterStudent(ctx context.Context, in RegisterStudentInput) (StudentAuthOutput, error) {
	usn := strings.ToUpper(strings.TrimSpace(in.USN))
	email := normalizeEmail(in.Email)
	if err := validateCredentials(usn, in.Name, email, in.Password); err != nil {
		return StudentAuthOutput{}, err
	}

	exists, err := u.students.ExistsByUSNOrEmail(ctx, usn, email)
	if err != nil {
		return StudentAuthOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if exists {
		return StudentAuthOutput{}, NewHTTPError(http.StatusConflict, "student with this USN or email already exists")
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return StudentAuthOutput{}, NewHTTPError(http.StatusInternalServerError, "hash error")
	}

	s := model.Student{
		USN:          usn,
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
	}
	if err := u.students.Create(ctx, &s); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return StudentAuthOutput{}, NewHTTPError(http.StatusConflict, "student with this USN or email already exists")
		}
		return StudentAuthOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	tok, err := u.token(s.ID, model.RoleStudent, s.USN)
	if err != nil {
		return StudentAuthOutput{}, err
	}
	return StudentAuthOutput{Student: toStudentDTO(s), Token: tok}, nil
}

func (u *AuthUsecase) LoginStudent(ctx context.Context, in LoginInput) (StudentAuthOutput, error) {
	var (
		s   model.Student
		err error
	)
	if key := strings.ToUpper(strings.TrimSpace(in.Key)); key != "" {
		s, err = u.students.FindByUSN(ctx, key)
	} else {
		s, err = u.students.FindByEmail(ctx, normalizeEmail(in.Email))
	}
	if errors.Is(err, repo.ErrNotFound) {
		return StudentAuthOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return StudentAuthOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !u.hasher.Verify(in.Password, s.PasswordHash) {
		return StudentAuthOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	tok, err := u.token(s.ID, model.RoleStudent, s.USN)
	if err != nil {
		return StudentAuthOutput{}, err
	}
	return StudentAuthOutput{Student: toStudentDTO(s), Token: tok}, nil
}

// 店舗登録。管理者の承認までは inactive / pending。
func (u *AuthUsecase) RegisterCanteen(ctx context.Context, in RegisterCanteenInput) (CanteenAuthOutput, error) {
	code := strings.ToUpper(strings.TrimSpace(in.CanteenID))
	email := normalizeEmail(in.Email)
	if err := validateCredentials(code, in.Name, email, in.Password); err != nil {
		return CanteenAuthOutput{}, err
	}
	//注文IDの区切りに "-" を使うのでコードには含めない
	if strings.Contains(code, "-") {
		return CanteenAuthOutput{}, NewHTTPError(http.StatusBadRequest, "canteen_id must not contain '-'")
	}

	exists, err := u.canteens.ExistsByCodeOrEmail(ctx, code, email)
	if err != nil {
		return CanteenAuthOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if exists {
		return CanteenAuthOutput{}, NewHTTPError(http.StatusConflict, "canteen with this ID or email already exists")
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return CanteenAuthOutput{}, NewHTTPError(http.StatusInternalServerError, "hash error")
	}

	c := model.Canteen{
		Code:           code,
		Name:           strings.TrimSpace(in.Name),
		Email:          email,
		PasswordHash:   hash,
		Status:         model.CanteenStatusInactive,
		ApprovalStatus: model.ApprovalPending,
		OperatingHours: model.OperatingHours{OpenTime: "09:00", CloseTime: "17:00"},
	}
	if err := u.canteens.Create(ctx, &c); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return CanteenAuthOutput{}, NewHTTPError(http.StatusConflict, "canteen with this ID or email already exists")
		}
		return CanteenAuthOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	tok, err := u.token(c.ID, model.RoleCanteen, c.Code)
	if err != nil {
		return CanteenAuthOutput{}, err
	}
	return CanteenAuthOutput{Canteen: ToCanteenDTO(c), Token: tok, PendingApproval: true}, nil
}

func (u *AuthUsecase) LoginCanteen(ctx context.Context, in LoginInput) (CanteenAuthOutput, error) {
	var (
		c   model.Canteen
		err error
	)
	if key := strings.ToUpper(strings.TrimSpace(in.Key)); key != "" {
		c, err = u.canteens.FindByCode(ctx, key)
	} else {
		c, err = u.canteens.FindByEmail(ctx, normalizeEmail(in.Email))
	}
	if errors.Is(err, repo.ErrNotFound) {
		return CanteenAuthOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return CanteenAuthOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !u.hasher.Verify(in.Password, c.PasswordHash) {
		return CanteenAuthOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if c.ApprovalStatus == model.ApprovalRejected {
		return CanteenAuthOutput{}, NewHTTPError(http.StatusForbidden, "canteen registration was rejected")
	}

	tok, err := u.token(c.ID, model.RoleCanteen, c.Code)
	if err != nil {
		return CanteenAuthOutput{}, err
	}
	return CanteenAuthOutput{
		Canteen:         ToCanteenDTO(c),
		Token:           tok,
		PendingApproval: c.ApprovalStatus == model.ApprovalPending,
	}, nil
}

func (u *AuthUsecase) LoginAdmin(ctx context.Context, email, password string) (AdminAuthOutput, error) {
	a, err := u.admins.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return AdminAuthOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return AdminAuthOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//停止中は不可
	if !a.IsActive {
		return AdminAuthOutput{}, NewHTTPError(http.StatusForbidden, "account is deactivated")
	}
	if !u.hasher.Verify(password, a.PasswordHash) {
		return AdminAuthOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	now := u.clock.Now()
	a.LastLoginAt = &now
	if err := u.admins.Update(ctx, &a); err != nil {
		return AdminAuthOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	tok, err := u.token(a.ID, model.RoleAdmin, a.Email)
	if err != nil {
		return AdminAuthOutput{}, err
	}
	return AdminAuthOutput{AdminID: a.ID, Email: a.Email, Token: tok}, nil
}

// EnsureAdmin は起動時に管理者がいなければ作る。作ったらtrue。
func (u *AuthUsecase) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	_, err := u.admins.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return false, err
	}
	if len(password) < minPasswordLength {
		return false, errors.New("admin password too short")
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return false, err
	}
	if err := u.admins.Create(ctx, &model.Admin{Email: email, PasswordHash: hash, IsActive: true}); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func toStudentDTO(s model.Student) StudentDTO {
	return StudentDTO{ID: s.ID, USN: s.USN, Name: s.Name, Email: s.Email}
}

func ToCanteenDTO(c model.Canteen) CanteenDTO {
	return CanteenDTO{
		ID:             c.ID,
		CanteenID:      c.Code,
		Name:           c.Name,
		Email:          c.Email,
		Status:         string(c.Status),
		ApprovalStatus: string(c.ApprovalStatus),
		OperatingHours: c.OperatingHours,
	}
}
