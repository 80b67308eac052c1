package ingest

import (
	"errors"
	"strings"
	"testing"
)

func TestReadTitles(t *testing.T) {
	input := "appid,type,name,releasedate,freetoplay\n" +
		"10,game,Counter-Strike,01-Nov-00,0\n" +
		"20,,Pok\xe9mon Fan Game,,1.0\n" +
		",dlc,No Id,05-Jan-10,0\n" +
		"30.0,demo,,Unknown,True\n"

	titles, err := ReadTitles(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(titles) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(titles))
	}

	if *titles[0].AppID != 10 || *titles[0].Type != "game" || *titles[0].FreeToPlay {
		t.Errorf("unexpected first row: %+v", titles[0])
	}
	if got := *titles[1].Name; got != "Pokémon Fan Game" {
		t.Errorf("expected latin-1 decoded name, got %q", got)
	}
	if titles[1].Type != nil || titles[1].ReleaseDate != nil {
		t.Errorf("expected missing type and release date, got %+v", titles[1])
	}
	if !*titles[1].FreeToPlay {
		t.Errorf("expected 1.0 to parse as free to play")
	}
	if titles[2].AppID != nil {
		t.Errorf("expected nil app id, got %d", *titles[2].AppID)
	}
	if *titles[3].AppID != 30 || titles[3].Name != nil || !*titles[3].FreeToPlay {
		t.Errorf("unexpected last row: %+v", titles[3])
	}
}

func TestReadTitles_HeaderCaseAndOrder(t *testing.T) {
	input := "Name,AppID,FreeToPlay,Type,ReleaseDate\nHalf-Life,70,0,game,08-Nov-98\n"
	titles, err := ReadTitles(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *titles[0].AppID != 70 || *titles[0].Name != "Half-Life" {
		t.Errorf("unexpected row: %+v", titles[0])
	}
}

func TestReadTitles_MissingColumn(t *testing.T) {
	_, err := ReadTitles(strings.NewReader("appid,name\n1,a\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}
}

func TestReadPriceRows(t *testing.T) {
	input := "Date,Initialprice,Finalprice,Discount\n" +
		"2019-04-07,9.99,9.99,0\n" +
		"2019-04-08,9.99,,0\n" +
		"2019-04-09,abc,4.99,50\n"

	rows, err := ReadPriceRows(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if !rows[0].CompleteRow() || *rows[0].FinalPrice != 9.99 {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[1].FinalPrice != nil || rows[1].CompleteRow() {
		t.Errorf("expected missing final price")
	}
	if rows[2].InitialPrice != nil {
		t.Errorf("expected non-numeric price to be missing")
	}
}

func TestParseID(t *testing.T) {
	s := func(v string) *string { return &v }
	if v := parseID(s("570")); v == nil || *v != 570 {
		t.Errorf("expected 570")
	}
	if v := parseID(s("570.5")); v != nil {
		t.Errorf("expected nil for fractional id, got %d", *v)
	}
	if v := parseID(s("x")); v != nil {
		t.Errorf("expected nil for non-numeric id")
	}
}
