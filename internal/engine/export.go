package engine

import (
	"coviddash/internal/models"
	"fmt"
	"io"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"
)

var CasePointSchema = arrow.NewSchema([]arrow.Field{
	{Name: "date", Type: arrow.FixedWidthTypes.Date32},
	{Name: "country", Type: arrow.BinaryTypes.String},
	{Name: "cases", Type: arrow.PrimitiveTypes.Int64},
}, nil)

// WriteArrow streams points to w as a single Arrow IPC record batch.
func WriteArrow(w io.Writer, points []models.CasePoint) error {
	mem := memory.NewGoAllocator()

	b := array.NewRecordBuilder(mem, CasePointSchema)
	defer b.Release()

	dates := b.Field(0).(*array.Date32Builder)
	countries := b.Field(1).(*array.StringBuilder)
	cases := b.Field(2).(*array.Int64Builder)
	for _, p := range points {
		d, err := time.Parse(dateFormat, p.Date)
		if err != nil {
			return fmt.Errorf("arrow export: %w", err)
		}
		dates.Append(arrow.Date32FromTime(d))
		countries.Append(p.Country)
		cases.Append(p.Cases)
	}

	rec := b.NewRecord()
	defer rec.Release()

	iw := ipc.NewWriter(w, ipc.WithSchema(CasePointSchema), ipc.WithAllocator(mem))
	if err := iw.Write(rec); err != nil {
		iw.Close()
		return fmt.Errorf("arrow export: %w", err)
	}
	return iw.Close()
}
