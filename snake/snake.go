// 关于的蛇的更新
package snake

import (
	"math/rand"

	"github.com/hoshinonyaruko/snake-grid/structs"
)

// 初始配置
var (
	InitialSnake     = []structs.Cell{{X: 10, Y: 10}}
	InitialDirection = structs.Right
	InitialFood      = structs.Cell{X: 15, Y: 15}
)

// Outcome reports what a single Tick did.
type Outcome int

const (
	Moved Outcome = iota
	Ate
	Collided
	Frozen
)

func (o Outcome) String() string {
	switch o {
	case Moved:
		return "moved"
	case Ate:
		return "ate"
	case Collided:
		return "collided"
	default:
		return "frozen"
	}
}

// GameState holds one game on a size x size toroidal grid.
//
// A GameState is owned by a single controller and is not safe for
// concurrent use.
type GameState struct {
	size      int
	snake     []structs.Cell
	direction structs.Direction
	food      structs.Cell
	score     int
	gameOver  bool
	rng       *rand.Rand
}

// New returns a game in the initial configuration. rng drives food
// placement.
func New(size int, rng *rand.Rand) *GameState {
	g := &GameState{size: size, rng: rng}
	g.Reset()
	return g
}

// Reset restores the initial snake, direction, food, score and clears
// GameOver.
func (g *GameState) Reset() {
	g.snake = append([]structs.Cell(nil), InitialSnake...)
	g.direction = InitialDirection
	g.food = InitialFood
	g.score = 0
	g.gameOver = false
}

// SetDirection records the heading used by the next Tick. Reversal into the
// body is allowed; invalid vectors and calls after game over are ignored.
func (g *GameState) SetDirection(d structs.Direction) {
	if g.gameOver || !d.Valid() {
		return
	}
	g.direction = d
}

// Tick advances the game by one step.
func (g *GameState) Tick() Outcome {
	if g.gameOver {
		return Frozen
	}

	head := g.snake[0]
	newHead := WrapPosition(head.Add(g.direction), g.size)

	// 吃到食物时不移除尾巴
	ate := newHead == g.food
	body := g.snake
	if ate {
		g.score++
		g.food = GenerateRandomPosition(g.rng, g.size)
	} else {
		body = g.snake[:len(g.snake)-1]
	}

	newSnake := make([]structs.Cell, 0, len(body)+1)
	newSnake = append(newSnake, newHead)
	newSnake = append(newSnake, body...)

	// 咬到自己: 保留移动前的蛇
	if CheckSelfCollision(newSnake) {
		g.gameOver = true
		return Collided
	}

	g.snake = newSnake
	if ate {
		return Ate
	}
	return Moved
}

// Snapshot returns a copy of the current state.
func (g *GameState) Snapshot() structs.Snapshot {
	return structs.Snapshot{
		Snake:     append([]structs.Cell(nil), g.snake...),
		Food:      g.food,
		Direction: g.direction,
		Score:     g.score,
		GameOver:  g.gameOver,
		GridSize:  g.size,
	}
}

func (g *GameState) GameOver() bool { return g.gameOver }

func (g *GameState) Score() int { return g.score }

// WrapPosition 确保位置不会超出地图边界
func WrapPosition(c structs.Cell, size int) structs.Cell {
	return structs.Cell{X: wrap(c.X, size), Y: wrap(c.Y, size)}
}

func wrap(v, size int) int {
	return ((v % size) + size) % size
}

// GenerateRandomPosition picks a cell uniformly over the whole grid. It does
// not avoid the snake.
func GenerateRandomPosition(rng *rand.Rand, size int) structs.Cell {
	return structs.Cell{
		X: rng.Intn(size),
		Y: rng.Intn(size),
	}
}

// CheckSelfCollision reports whether the head overlaps any other cell.
func CheckSelfCollision(cells []structs.Cell) bool {
	if len(cells) < 2 {
		return false
	}
	head := cells[0]
	for _, bodyPart := range cells[1:] {
		if head == bodyPart {
			return true
		}
	}
	return false
}
