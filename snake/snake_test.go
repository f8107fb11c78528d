package snake

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/hoshinonyaruko/snake-grid/structs"
)

const gridSize = 20

func newTestState(seed int64) *GameState {
	return New(gridSize, rand.New(rand.NewSource(seed)))
}

func cells(xy ...int) []structs.Cell {
	out := make([]structs.Cell, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, structs.Cell{X: xy[i], Y: xy[i+1]})
	}
	return out
}

func assertInitial(t *testing.T, snap structs.Snapshot) {
	t.Helper()
	if !reflect.DeepEqual(snap.Snake, cells(10, 10)) {
		t.Errorf("snake = %v, want [(10,10)]", snap.Snake)
	}
	if snap.Direction != structs.Right {
		t.Errorf("direction = %v, want right", snap.Direction)
	}
	if snap.Food != (structs.Cell{X: 15, Y: 15}) {
		t.Errorf("food = %v, want (15,15)", snap.Food)
	}
	if snap.Score != 0 || snap.GameOver {
		t.Errorf("score = %d, gameOver = %v, want 0, false", snap.Score, snap.GameOver)
	}
}

func TestNewIsInitialConfiguration(t *testing.T) {
	g := newTestState(1)
	snap := g.Snapshot()
	assertInitial(t, snap)
	if snap.GridSize != gridSize {
		t.Errorf("grid size = %d, want %d", snap.GridSize, gridSize)
	}
}

func TestTickEatsFood(t *testing.T) {
	g := newTestState(1)
	g.food = structs.Cell{X: 11, Y: 10}

	if got := g.Tick(); got != Ate {
		t.Fatalf("Tick() = %v, want ate", got)
	}

	snap := g.Snapshot()
	if snap.Score != 1 {
		t.Errorf("score = %d, want 1", snap.Score)
	}
	if want := cells(11, 10, 10, 10); !reflect.DeepEqual(snap.Snake, want) {
		t.Errorf("snake = %v, want %v", snap.Snake, want)
	}
	if snap.Food.X < 0 || snap.Food.X >= gridSize || snap.Food.Y < 0 || snap.Food.Y >= gridSize {
		t.Errorf("new food %v outside grid", snap.Food)
	}
}

func TestTickWrapsAndDropsTail(t *testing.T) {
	g := newTestState(1)
	g.snake = cells(19, 10, 18, 10)

	if got := g.Tick(); got != Moved {
		t.Fatalf("Tick() = %v, want moved", got)
	}
	if want := cells(0, 10, 19, 10); !reflect.DeepEqual(g.snake, want) {
		t.Errorf("snake = %v, want %v", g.snake, want)
	}
}

func TestTickReversalIntoBodyEndsGame(t *testing.T) {
	g := newTestState(1)
	g.snake = cells(10, 10, 11, 10, 12, 10)
	g.direction = structs.Left
	g.SetDirection(structs.Right)

	if got := g.Tick(); got != Collided {
		t.Fatalf("Tick() = %v, want collided", got)
	}
	if !g.GameOver() {
		t.Fatal("expected game over")
	}
	// rolled back to the pre-tick snake
	if want := cells(10, 10, 11, 10, 12, 10); !reflect.DeepEqual(g.snake, want) {
		t.Errorf("snake = %v, want %v", g.snake, want)
	}
}

func TestTickReversalOfTwoCellSnakeSwaps(t *testing.T) {
	g := newTestState(1)
	g.snake = cells(10, 10, 11, 10)
	g.SetDirection(structs.Right)

	if got := g.Tick(); got != Moved {
		t.Fatalf("Tick() = %v, want moved", got)
	}
	if want := cells(11, 10, 10, 10); !reflect.DeepEqual(g.snake, want) {
		t.Errorf("snake = %v, want %v", g.snake, want)
	}
}

func TestTickIntoVacatedTailIsSafe(t *testing.T) {
	g := newTestState(1)
	// square loop: head moves onto the cell the tail leaves this tick
	g.snake = cells(10, 10, 10, 11, 11, 11, 11, 10)
	g.direction = structs.Right

	if got := g.Tick(); got != Moved {
		t.Fatalf("Tick() = %v, want moved", got)
	}
	if want := cells(11, 10, 10, 10, 10, 11, 11, 11); !reflect.DeepEqual(g.snake, want) {
		t.Errorf("snake = %v, want %v", g.snake, want)
	}
}

func TestTickGrowingIntoTailCollides(t *testing.T) {
	g := newTestState(1)
	g.snake = cells(10, 10, 10, 11, 11, 11, 11, 10)
	g.direction = structs.Right
	// food under the tail: the tail stays, so the head hits it
	g.food = structs.Cell{X: 11, Y: 10}

	if got := g.Tick(); got != Collided {
		t.Fatalf("Tick() = %v, want collided", got)
	}
	if g.Score() != 1 {
		t.Errorf("score = %d, want 1", g.Score())
	}
}

func TestGameOverFreezesState(t *testing.T) {
	g := newTestState(1)
	g.snake = cells(10, 10, 11, 10, 12, 10)
	g.direction = structs.Right
	g.Tick()
	if !g.GameOver() {
		t.Fatal("expected game over")
	}

	before := g.Snapshot()
	g.SetDirection(structs.Up)
	for i := 0; i < 10; i++ {
		if got := g.Tick(); got != Frozen {
			t.Fatalf("Tick() = %v, want frozen", got)
		}
	}
	if after := g.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Errorf("state changed after game over: %+v -> %+v", before, after)
	}
}

func TestSetDirectionOverwritesPending(t *testing.T) {
	g := newTestState(1)
	g.SetDirection(structs.Up)
	g.SetDirection(structs.Down)
	g.Tick()
	if head := g.snake[0]; head != (structs.Cell{X: 10, Y: 11}) {
		t.Errorf("head = %v, want (10,11)", head)
	}
}

func TestSetDirectionIgnoresInvalid(t *testing.T) {
	g := newTestState(1)
	for _, d := range []structs.Direction{{}, {X: 1, Y: 1}, {X: 2, Y: 0}} {
		g.SetDirection(d)
		if g.direction != structs.Right {
			t.Errorf("SetDirection(%v) changed heading to %v", d, g.direction)
		}
	}
}

func TestWrapInvariant(t *testing.T) {
	tests := []struct {
		name  string
		start structs.Cell
		dir   structs.Direction
		want  structs.Cell
	}{
		{"left edge", structs.Cell{X: 0, Y: 5}, structs.Left, structs.Cell{X: 19, Y: 5}},
		{"right edge", structs.Cell{X: 19, Y: 5}, structs.Right, structs.Cell{X: 0, Y: 5}},
		{"top edge", structs.Cell{X: 5, Y: 0}, structs.Up, structs.Cell{X: 5, Y: 19}},
		{"bottom edge", structs.Cell{X: 5, Y: 19}, structs.Down, structs.Cell{X: 5, Y: 0}},
		{"inside", structs.Cell{X: 5, Y: 5}, structs.Down, structs.Cell{X: 5, Y: 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestState(1)
			g.snake = []structs.Cell{tt.start}
			g.food = structs.Cell{X: 15, Y: 15}
			g.SetDirection(tt.dir)
			g.Tick()
			if g.snake[0] != tt.want {
				t.Errorf("head = %v, want %v", g.snake[0], tt.want)
			}
		})
	}
}

func TestLongRunInvariants(t *testing.T) {
	g := newTestState(42)
	rng := rand.New(rand.NewSource(7))
	dirs := []structs.Direction{structs.Up, structs.Down, structs.Left, structs.Right}

	for i := 0; i < 2000 && !g.GameOver(); i++ {
		if i%3 == 0 {
			g.SetDirection(dirs[rng.Intn(len(dirs))])
		}
		before := g.Snapshot()
		outcome := g.Tick()
		after := g.Snapshot()

		for _, c := range after.Snake {
			if c.X < 0 || c.X >= gridSize || c.Y < 0 || c.Y >= gridSize {
				t.Fatalf("tick %d: cell %v outside grid", i, c)
			}
		}
		if after.Score < before.Score || after.Score > before.Score+1 {
			t.Fatalf("tick %d: score %d -> %d", i, before.Score, after.Score)
		}

		switch outcome {
		case Ate:
			if len(after.Snake) != len(before.Snake)+1 || after.Score != before.Score+1 {
				t.Fatalf("tick %d: ate but len %d -> %d, score %d -> %d",
					i, len(before.Snake), len(after.Snake), before.Score, after.Score)
			}
		case Moved:
			if len(after.Snake) != len(before.Snake) || after.Score != before.Score {
				t.Fatalf("tick %d: moved but len %d -> %d", i, len(before.Snake), len(after.Snake))
			}
		case Collided:
			if !reflect.DeepEqual(after.Snake, before.Snake) {
				t.Fatalf("tick %d: snake not rolled back on collision", i)
			}
		}
		if !after.GameOver && CheckSelfCollision(after.Snake) {
			t.Fatalf("tick %d: head overlaps body while alive", i)
		}
	}
}

func TestResetRestoresInitial(t *testing.T) {
	g := newTestState(3)
	g.food = structs.Cell{X: 11, Y: 10}
	g.Tick()
	g.SetDirection(structs.Down)
	g.Tick()
	g.snake = cells(10, 10, 11, 10, 12, 10)
	g.SetDirection(structs.Right)
	g.Tick()

	g.Reset()
	assertInitial(t, g.Snapshot())
}

func TestSnapshotIsCopy(t *testing.T) {
	g := newTestState(1)
	snap := g.Snapshot()
	snap.Snake[0] = structs.Cell{X: 0, Y: 0}
	if g.snake[0] != (structs.Cell{X: 10, Y: 10}) {
		t.Error("mutating a snapshot changed the game")
	}
}

// Food may land on the snake; only the grid bounds are guaranteed.
func TestGenerateRandomPositionInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 1000; i++ {
		c := GenerateRandomPosition(rng, gridSize)
		if c.X < 0 || c.X >= gridSize || c.Y < 0 || c.Y >= gridSize {
			t.Fatalf("cell %v outside grid", c)
		}
	}
}
