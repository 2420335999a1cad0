package service

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Error kinds. Handlers map these to HTTP statuses with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrTooLarge        = errors.New("payload too large")
)

// Error is a domain failure carrying the message shown to API clients
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// Message is the client-facing text
func (e *Error) Message() string { return e.msg }

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func validationError(msg string) error {
	return newError(ErrValidation, msg)
}

var (
	ErrParentNotFound     = newError(ErrNotFound, "Parent introuvable")
	ErrNoPendingCode      = newError(ErrValidation, "Aucun code en attente")
	ErrCodeExpired        = newError(ErrValidation, "Code expiré")
	ErrCodeMismatch       = newError(ErrValidation, "Code invalide")
	ErrSchoolNotFound     = newError(ErrNotFound, "École introuvable")
	ErrPendingApproval    = newError(ErrForbidden, "École en attente d'approbation")
	ErrWrongPassword      = newError(ErrUnauthenticated, "Mot de passe incorrect")
	ErrEmailTaken         = newError(ErrConflict, "Email déjà utilisé")
	ErrAdminNotFound      = newError(ErrNotFound, "Administrateur introuvable")
	ErrChildNotFound      = newError(ErrNotFound, "Enfant introuvable")
	ErrChildNotEnrolled   = newError(ErrForbidden, "Cet enfant n'est pas inscrit dans votre école.")
	ErrFeeAccessDenied    = newError(ErrForbidden, "Accès non autorisé à ces frais.")
	ErrFeeNotFound        = newError(ErrNotFound, "Frais introuvable")
	ErrFeeNotOwned        = newError(ErrForbidden, "Accès refusé. Ce frais ne concerne pas vos enfants.")
	ErrFeeSettled         = newError(ErrConflict, "Ce frais est déjà payé ou en cours de validation.")
	ErrPaymentNotFound    = newError(ErrNotFound, "Paiement non trouvé.")
	ErrPaymentNotYours    = newError(ErrForbidden, "Accès refusé. Ce paiement n'est pas associé à votre compte.")
	ErrPaymentOtherSchool = newError(ErrForbidden, "Accès refusé. Ce paiement n'est pas associé à votre école.")
	ErrPaymentSettled     = newError(ErrConflict, "Ce paiement a déjà été traité.")
	ErrReceiptMissing     = newError(ErrValidation, "Fichier de preuve manquant.")
	ErrReceiptType        = newError(ErrValidation, "Type de fichier non supporté.")
	ErrReceiptTooLarge    = newError(ErrTooLarge, "Fichier trop volumineux.")
)

// notFound converts gorm's record-not-found into the given domain error
func notFound(err error, domain error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain
	}
	return err
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// forUpdate adds a row lock on dialects that support SELECT ... FOR UPDATE
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
