// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package prayer

// ApplyOffsets shifts each time by its minute offset. Times without an offset keep their exact
// original string, and times that cannot be parsed are passed through unchanged. The result wraps
// around midnight; day changes are not tracked.
func ApplyOffsets(times Times, offsets Offsets) Times {
	result := times
	for _, key := range Order {
		offset := offsets[key]
		if offset == 0 {
			continue
		}
		clock, ok := ParseClock(times.Get(key))
		if !ok {
			continue
		}
		result.Set(key, Format(clock.Hour, clock.Minute+offset))
	}
	return result
}

// ApplyOverrides replaces every time that has a custom value with that literal value.
func ApplyOverrides(times Times, overrides CustomTimes) Times {
	result := times
	for key, val := range overrides {
		if !key.Valid() {
			continue
		}
		result.Set(key, val)
	}
	return result
}

// Merge applies offsets first and overrides second.
func Merge(calculated Times, offsets Offsets, overrides CustomTimes) Times {
	return ApplyOverrides(ApplyOffsets(calculated, offsets), overrides)
}
