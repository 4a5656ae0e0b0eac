package notification_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/core"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/notification"
	"github.com/AntonStoeckl/circulation-engine-go/testutil/fixtures"
)

func Test_NoticesFrom_MapsPatronFacingEventsOnly(t *testing.T) {
	// arrange
	loan := fixtures.CheckedOut("rec-1", "patron-1", "item-1", "inst-1", fixtures.Now.Add(14*24*time.Hour))
	events := core.DomainEvents{
		fixtures.CopyAdded("item-1", "inst-1"),
		loan,
		fixtures.FineAssessed("fine-1", "patron-2", "item-1", 150),
	}
	locales := map[core.PatronIDString]language.Tag{"patron-2": language.German}

	// act
	notices := notification.NoticesFrom(events, func(patronID core.PatronIDString) language.Tag {
		if tag, ok := locales[patronID]; ok {
			return tag
		}

		return language.English
	})

	// assert
	require.Len(t, notices, 2)

	assert.Equal(t, notification.KindItemCheckedOut, notices[0].Kind)
	assert.Equal(t, "patron-1", notices[0].PatronID)
	assert.Equal(t, language.English, notices[0].Locale)
	assert.Equal(t, "item-1", notices[0].Params[notification.ParamItemID])
	assert.Equal(t, "2026-03-15", notices[0].Params[notification.ParamDate])

	assert.Equal(t, notification.KindFineAssessed, notices[1].Kind)
	assert.Equal(t, language.German, notices[1].Locale)
	assert.Equal(t, "150", notices[1].Params[notification.ParamAmount])
	assert.NotEqual(t, notices[0].ID, notices[1].ID)
}

func Test_ParseLocale_FallsBackToEnglish(t *testing.T) {
	assert.Equal(t, language.German, notification.ParseLocale("de"))
	assert.Equal(t, language.English, notification.ParseLocale(""))
	assert.Equal(t, language.English, notification.ParseLocale("not a locale!"))
}
