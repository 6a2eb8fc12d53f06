package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
	"github.com/iliyamo/festival-jury-scoring/internal/roster"
)

func TestRosterRepo_LoadRoster(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("SELECT id, name FROM stages").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Hoofdpodium").AddRow(2, "Cafe 61"))
	mock.ExpectQuery("SELECT id, name FROM bands").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(4, "The Dynamics"))
	mock.ExpectQuery("SELECT id, name, discipline, stage_id FROM jury_members").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "discipline", "stage_id"}).
			AddRow("1", "Anna", "muzikaliteit", 1).
			AddRow("2", "Bram", "show", 1).
			AddRow("3", "Cor", "acrobatics", 2))
	mock.ExpectQuery("SELECT id, name, discipline FROM categories").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "discipline"}).
			AddRow(1, "Zuiverheid", "musicality").
			AddRow(7, "Interactie", "show"))

	snap, err := NewRosterRepo(db, nil).LoadRoster(context.Background())
	require.NoError(t, err)

	assert.Len(t, snap.Stages, 2)
	assert.Len(t, snap.Bands, 1)
	require.Len(t, snap.JuryMembers, 2, "rows with an unknown discipline are skipped")
	d, ok := snap.DisciplineOf("1")
	require.True(t, ok)
	assert.Equal(t, model.Musicality, d)
	assert.Len(t, snap.CategoriesFor(model.Show), 1)
}

func TestRosterRepo_CreateBandDuplicate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bands (id, name) VALUES (?, ?)")).
		WithArgs(4, "The Dynamics").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '4' for key 'PRIMARY'"})

	err := NewRosterRepo(db, nil).CreateBand(context.Background(), model.Band{ID: 4, Name: "The Dynamics"})
	assert.ErrorIs(t, err, roster.ErrDuplicate)
}

func TestRosterRepo_UpdateBandNameNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bands SET name = ? WHERE id = ?")).
		WithArgs("Renamed", 99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewRosterRepo(db, nil).UpdateBandName(context.Background(), 99, "Renamed")
	assert.ErrorIs(t, err, roster.ErrNotFound)
}

func TestRosterRepo_UpdateJuryMemberTouchesOnlyGivenFields(t *testing.T) {
	db, mock := newMock(t)
	name := "Anna B."
	stage := 3
	mock.ExpectExec(regexp.QuoteMeta("UPDATE jury_members SET name = ?, stage_id = ? WHERE id = ?")).
		WithArgs("Anna B.", 3, "1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewRosterRepo(db, nil).UpdateJuryMember(context.Background(), "1", roster.JuryMemberUpdate{Name: &name, StageID: &stage})
	assert.NoError(t, err)
}

func TestRosterRepo_RenameStage(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE stages SET name = ? WHERE id = ?")).
		WithArgs("Grote Markt", 4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, NewRosterRepo(db, nil).UpdateStageName(context.Background(), 4, "Grote Markt"))
}
