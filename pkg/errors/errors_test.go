// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ticketline Contributors

package errors_test

import (
	stderrors "errors"
	"net/http"
	"testing"

	tlerr "github.com/ticketline-dev/ticketline/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIncludesCodeAndFields(t *testing.T) {
	err := tlerr.New(
		tlerr.CodeTicketGetNotFound,
		"ticket missing",
		tlerr.FieldTicketID("tkt-123"),
		tlerr.Field("page", 2),
	)

	require.Error(t, err)
	assert.Equal(t, tlerr.CodeTicketGetNotFound, tlerr.CodeOf(err))
	assert.True(t, tlerr.HasCode(err, tlerr.CodeTicketGetNotFound))

	fields := tlerr.FieldsOf(err)
	assert.Equal(t, "tkt-123", fields["ticket_id"])
	assert.Equal(t, 2, fields["page"])
}

func TestErrorfFormatsMessage(t *testing.T) {
	err := tlerr.Errorf(tlerr.CodeQueryPageInvalid, "page number %q is not a positive integer", "abc")
	require.Error(t, err)
	assert.Equal(t, tlerr.CodeQueryPageInvalid, tlerr.CodeOf(err))
	assert.Contains(t, err.Error(), `page number "abc" is not a positive integer`)
}

func TestErrorfWrapsInnerError(t *testing.T) {
	inner := stderrors.New("disk full")
	err := tlerr.Errorf(tlerr.CodeStoreDatabaseFailure, "write failed: %w", inner)
	require.Error(t, err)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, tlerr.CodeStoreDatabaseFailure, tlerr.CodeOf(err))
}

func TestWrapPreservesWrappedErrorAndCode(t *testing.T) {
	root := stderrors.New("record missing")
	err := tlerr.Wrap(
		root,
		tlerr.CodeContactGetNotFound,
		"loading contact",
		tlerr.FieldContactID("ct-42"),
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, root)
	assert.Equal(t, tlerr.CodeContactGetNotFound, tlerr.CodeOf(err))
	assert.True(t, tlerr.IsNotFound(err))
	assert.Equal(t, "ct-42", tlerr.FieldsOf(err)["contact_id"])
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, tlerr.Wrap(nil, tlerr.CodeServerInternalFailure, "ignored"))
	assert.NoError(t, tlerr.Wrapf(nil, tlerr.CodeServerInternalFailure, "ignored %s", "arg"))
}

func TestClassifiers(t *testing.T) {
	assert.True(t, tlerr.IsNotFound(tlerr.New(tlerr.CodeTicketGetNotFound, "x")))
	assert.True(t, tlerr.IsInvalidInput(tlerr.New(tlerr.CodeQueryFilterInvalid, "x")))
	assert.True(t, tlerr.IsInvalidInput(tlerr.New(tlerr.CodeConfigValidateInvalidValue, "x")))
	assert.True(t, tlerr.IsUnauthorized(tlerr.New(tlerr.CodeServerAuthUnauthorized, "x")))

	assert.False(t, tlerr.IsNotFound(tlerr.New(tlerr.CodeStoreDatabaseFailure, "x")))
	assert.False(t, tlerr.IsNotFound(nil))
	assert.False(t, tlerr.IsNotFound(stderrors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, tlerr.HTTPStatus(tlerr.New(tlerr.CodeTicketGetNotFound, "x")))
	assert.Equal(t, http.StatusBadRequest, tlerr.HTTPStatus(tlerr.New(tlerr.CodeQueryFilterInvalid, "x")))
	assert.Equal(t, http.StatusUnauthorized, tlerr.HTTPStatus(tlerr.New(tlerr.CodeServerAuthUnauthorized, "x")))
	assert.Equal(t, http.StatusInternalServerError, tlerr.HTTPStatus(tlerr.New(tlerr.CodeStoreDatabaseFailure, "x")))
	assert.Equal(t, http.StatusInternalServerError, tlerr.HTTPStatus(stderrors.New("plain")))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, tlerr.Code(""), tlerr.CodeOf(stderrors.New("plain")))
	assert.Equal(t, tlerr.Code(""), tlerr.CodeOf(nil))
}
