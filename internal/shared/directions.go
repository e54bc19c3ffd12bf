package shared

// Delta returns the row and column difference from one location to another.
func Delta(from, to Location) (int, int) {
	return to.Row() - from.Row(), to.Col() - from.Col()
}

// Line lists the squares strictly between from and to when they share a
// row, column or diagonal. It returns nil otherwise or when they touch.
func Line(from, to Location) []Location {
	dr, dc := Delta(from, to)
	aligned := (dr == 0) != (dc == 0) || (dr != 0 && Abs(dr) == Abs(dc))
	if !aligned {
		return nil
	}
	distance := max(Abs(dr), Abs(dc)) - 1
	if distance <= 0 {
		return nil
	}
	stepR, stepC := Signum(dr), Signum(dc)
	squares := make([]Location, 0, distance)
	cur := from
	for i := 0; i < distance; i++ {
		next, ok := cur.Offset(stepR, stepC)
		if !ok {
			return nil
		}
		squares = append(squares, next)
		cur = next
	}
	return squares
}

// Adjacent lists the up to eight on-board neighbours of a location.
func Adjacent(loc Location) []Location {
	out := make([]Location, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if next, ok := loc.Offset(dr, dc); ok {
				out = append(out, next)
			}
		}
	}
	return out
}

func Signum(v int) int {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}

func Abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
