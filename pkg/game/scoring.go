package game

// lineClearScores is the base score bonus per number of lines cleared at
// once. Clears beyond four score 400 per line.
var lineClearScores = map[int]uint64{
	1: 100,
	2: 300,
	3: 500,
	4: 800,
}

// scoreAccolade updates the combo, back-to-back and score counters for a
// lock that cleared n lines and returns the accolade to emit.
func (g *Game) scoreAccolade(n int, spin, perfectClear bool) Accolade {
	st := &g.state
	st.ConsecutiveLineClears++

	difficult := n >= 4 || spin
	if difficult {
		st.BackToBack++
	} else {
		st.BackToBack = 0
	}

	base, ok := lineClearScores[n]
	if !ok {
		base = 400 * uint64(n)
	}
	bonus := base * uint64(st.Level(g.config.UpdateDelaysEveryNLineClears))
	if spin {
		bonus *= 2
	}
	if perfectClear {
		bonus *= 2
	}
	if st.ConsecutiveLineClears > 1 {
		bonus += 50 * uint64(st.ConsecutiveLineClears-1)
	}
	if st.BackToBack > 1 {
		bonus = bonus * 3 / 2
	}
	st.Score += bonus

	shape := g.phase.Piece.Piece.Shape
	return Accolade{
		ScoreBonus:   bonus,
		Shape:        shape,
		Spin:         spin,
		LinesCleared: n,
		PerfectClear: perfectClear,
		Combo:        st.ConsecutiveLineClears,
		BackToBack:   st.BackToBack,
	}
}
