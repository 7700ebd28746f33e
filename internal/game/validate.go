package game

import (
	"fmt"

	"go.uber.org/multierr"
)

// CompareBoards checks that both representations denote the same position:
// per cell height, owner of every stone and kind of the top stone.
func CompareBoards(ob *ObjectBoard, bb *BitBoard) error {
	if ob.Size() != bb.Size() {
		return fmt.Errorf("board sizes differ: %d vs %d", ob.Size(), bb.Size())
	}
	var err error
	for _, st := range ob.Stacks() {
		c := st.Coord
		if !st.valid() {
			err = multierr.Append(err, fmt.Errorf("%s: non-flat stone below the top", c))
		}
		if h := bb.StackHeight(c); h != st.Height() {
			err = multierr.Append(err, fmt.Errorf("%s: height %d vs %d", c, st.Height(), h))
			continue
		}
		bits := bb.StackAt(c)
		for j, s := range st.Stones {
			if !s.Equal(bits[j]) {
				err = multierr.Append(err, fmt.Errorf("%s[%d]: %v vs %v", c, j, s, bits[j]))
			}
		}
	}
	return err
}

// mustMatch panics when the representations diverge. A divergence is a
// lockstep bug and the game cannot continue from it.
func mustMatch(ob *ObjectBoard, bb *BitBoard, shadow *BitBoard) {
	err := CompareBoards(ob, bb)
	if shadow != nil && !shadow.Equal(bb) {
		err = multierr.Append(err, fmt.Errorf("clone executor diverged from in-place executor"))
	}
	if err != nil {
		panic(fmt.Sprintf("board representations diverged:\n%v\nobject:\n%sbits:\n%s", err, ob, bb))
	}
}
