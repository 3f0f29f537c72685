package scheduling

import "clinicore/models"

// GenerateSlots expands one day's working windows into candidate slot start
// times (minutes from midnight). Pure function: no clock, no store.
//
// For each window a cursor walks from the window start, emitting a slot while
// the full slot duration still fits, then advancing by slotDuration+bufferTime.
// Windows are processed in stored order and are not sorted here; a template
// whose windows were saved out of order produces per-window-correct output in
// that same order.
func GenerateSlots(day models.DaySchedule, slotDuration, bufferTime int) []int {
	if !day.IsWorking || len(day.Windows) == 0 || slotDuration <= 0 {
		return nil
	}

	step := slotDuration + bufferTime
	var slots []int
	for _, w := range day.Windows {
		for cursor := w.Start; cursor+slotDuration <= w.End; cursor += step {
			slots = append(slots, cursor)
		}
	}
	return slots
}
