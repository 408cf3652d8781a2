package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ardanlabs/crowdsale/business/core/sale"
	"github.com/ardanlabs/conf/v3"
)

// Records prints the stored calls in the range given by the optional from
// and to arguments.
func Records(args conf.Args, store Store) error {
	var from, to uint64
	if s := args.Num(1); s != "" {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid from %q: %w", s, err)
		}
		from = n
	}
	if s := args.Num(2); s != "" {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid to %q: %w", s, err)
		}
		to = n
	}

	strg, err := store.open()
	if err != nil {
		return err
	}
	defer strg.Close()

	iter := strg.ForEach()
	defer iter.Close()

	for {
		rec, err := iter.Next()
		if err != nil {
			if iter.Done() && errors.Is(err, sale.ErrNotFound) {
				break
			}
			return err
		}

		if rec.Number < from || (to != 0 && rec.Number > to) {
			continue
		}

		caller, err := rec.Call.FromAccount()
		if err != nil {
			caller = "unknown"
		}

		fmt.Printf("%d  %s  %s  %s nonce[%d] value[%d] amount[%d] to[%s] goal[%d-%d]\n",
			rec.Number, rec.Time().Format("2006-01-02T15:04:05Z07:00"), caller, rec.Call.Op, rec.Call.Nonce,
			rec.Call.Value, rec.Call.Amount, rec.Call.To, rec.Call.GoalMin, rec.Call.GoalMax)
	}

	return nil
}
