package journal

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/rustyeddy/propjournal/model"
)

// TradeRow is the flat CSV shape of a trade.
type TradeRow struct {
	ID             string  `csv:"id"`
	Date           string  `csv:"date"`
	EntryTime      string  `csv:"entry_time"`
	ExitTime       string  `csv:"exit_time"`
	Account        string  `csv:"account_id"`
	Playbook       string  `csv:"playbook"`
	Symbol         string  `csv:"symbol"`
	Direction      string  `csv:"direction"`
	PositionSize   float64 `csv:"position_size"`
	EntryPrice     float64 `csv:"entry_price"`
	ExitPrice      float64 `csv:"exit_price"`
	PnLGross       float64 `csv:"pnl_gross"`
	Commission     float64 `csv:"commission"`
	PnLNet         float64 `csv:"pnl_net"`
	Grade          string  `csv:"grade"`
	SizeLabel      string  `csv:"size_label"`
	EmotionalState int     `csv:"emotional_state"`
	SetupQuality   int     `csv:"setup_quality"`
	FollowedRules  bool    `csv:"followed_rules"`
	WouldRepeat    bool    `csv:"would_repeat"`
	Notes          string  `csv:"notes"`
}

func rowOf(t model.Trade) TradeRow {
	return TradeRow{
		ID:             string(t.ID),
		Date:           t.Date,
		EntryTime:      t.EntryTime,
		ExitTime:       t.ExitTime,
		Account:        string(t.AccountID),
		Playbook:       t.Playbook,
		Symbol:         t.Symbol,
		Direction:      string(t.Direction),
		PositionSize:   t.PositionSize,
		EntryPrice:     t.EntryPrice,
		ExitPrice:      t.ExitPrice,
		PnLGross:       t.PnLGross,
		Commission:     t.Commission,
		PnLNet:         t.PnLNet,
		Grade:          string(t.Grade),
		SizeLabel:      t.SizeLabel,
		EmotionalState: t.EmotionalState,
		SetupQuality:   t.SetupQuality,
		FollowedRules:  t.FollowedRules,
		WouldRepeat:    t.WouldRepeat,
		Notes:          t.Notes,
	}
}

func rowsOf(trades []model.Trade) []*TradeRow {
	rows := make([]*TradeRow, 0, len(trades))
	for _, t := range trades {
		r := rowOf(t)
		rows = append(rows, &r)
	}
	return rows
}

// WriteTradesCSV writes trades with a header row.
func WriteTradesCSV(w io.Writer, trades []model.Trade) error {
	rows := rowsOf(trades)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write trades csv: %w", err)
	}
	return nil
}

// WriteTradesCSVFile creates path and writes trades to it.
func WriteTradesCSVFile(path string, trades []model.Trade) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	rows := rowsOf(trades)
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		f.Close()
		return fmt.Errorf("write trades csv: %w", err)
	}
	return f.Close()
}

// ReadTradesCSV reads rows written by WriteTradesCSV.
func ReadTradesCSV(r io.Reader) ([]TradeRow, error) {
	var rows []TradeRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("read trades csv: %w", err)
	}
	return rows, nil
}
