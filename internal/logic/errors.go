package logic

import (
	"errors"
	"fmt"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/model"
)

// ErrorKind 业务错误类别，由 handler 映射为 HTTP 状态码
type ErrorKind string

const (
	KindInvalidTransition           ErrorKind = "invalid_transition"
	KindInvalidAmount               ErrorKind = "invalid_amount"
	KindInsufficientClaimableAmount ErrorKind = "insufficient_claimable_amount"
	KindForbidden                   ErrorKind = "forbidden"
	KindNotFound                    ErrorKind = "not_found"
	KindInvalidDocumentType         ErrorKind = "invalid_document_type"
	KindReportClosed                ErrorKind = "report_closed"
	KindAlreadyRated                ErrorKind = "already_rated"
	KindInvalidInput                ErrorKind = "invalid_input"
)

// Error 业务错误
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// ErrorKind 错误类别
func (e *Error) ErrorKind() ErrorKind {
	return e.Kind
}

// Is 按类别比较，使 errors.Is(err, ErrNotFound) 对任意 NotFound 错误成立
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// 哨兵错误，仅用于 errors.Is 比较
var (
	ErrInvalidTransition           = &Error{Kind: KindInvalidTransition}
	ErrInvalidAmount               = &Error{Kind: KindInvalidAmount}
	ErrInsufficientClaimableAmount = &Error{Kind: KindInsufficientClaimableAmount}
	ErrForbidden                   = &Error{Kind: KindForbidden}
	ErrNotFound                    = &Error{Kind: KindNotFound}
	ErrInvalidDocumentType         = &Error{Kind: KindInvalidDocumentType}
	ErrReportClosed                = &Error{Kind: KindReportClosed}
	ErrAlreadyRated                = &Error{Kind: KindAlreadyRated}
	ErrInvalidInput                = &Error{Kind: KindInvalidInput}
)

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError 状态迁移不在允许的边集中
type InvalidTransitionError struct {
	CampaignId int64
	From       model.CampaignStatus
	To         model.CampaignStatus
	Reason     string
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("campaign %d: invalid transition %s -> %s", e.CampaignId, e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *InvalidTransitionError) ErrorKind() ErrorKind {
	return KindInvalidTransition
}

func (e *InvalidTransitionError) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == KindInvalidTransition
}

// AlreadyRatedError 同一评分人重复评分，携带已有评分
type AlreadyRatedError struct {
	RaterId          int64
	ProgressReportId int64
	ExistingRating   int
}

func (e *AlreadyRatedError) Error() string {
	return fmt.Sprintf("user %d already rated progress report %d with %d",
		e.RaterId, e.ProgressReportId, e.ExistingRating)
}

func (e *AlreadyRatedError) ErrorKind() ErrorKind {
	return KindAlreadyRated
}

func (e *AlreadyRatedError) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == KindAlreadyRated
}

type kinded interface {
	ErrorKind() ErrorKind
}

// KindOf 返回错误类别；非业务错误返回空字符串
func KindOf(err error) ErrorKind {
	var k kinded
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	return ""
}
