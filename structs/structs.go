package structs

// Cell 描述游戏地图上的一个格子坐标。
type Cell struct {
	X int `json:"x"` // X坐标
	Y int `json:"y"` // Y坐标
}

// Add returns the cell shifted by d, without wrapping.
func (c Cell) Add(d Direction) Cell {
	return Cell{X: c.X + d.X, Y: c.Y + d.Y}
}

// Direction 蛇头每次移动的单位向量。
type Direction struct {
	X int `json:"x"`
	Y int `json:"y"`
}

var (
	Up    = Direction{X: 0, Y: -1}
	Down  = Direction{X: 0, Y: 1}
	Left  = Direction{X: -1, Y: 0}
	Right = Direction{X: 1, Y: 0}
)

// Valid reports whether d is one of the four unit headings.
func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "none"
	}
}

// CellKind is what a renderer paints into one grid cell.
type CellKind int

const (
	Empty CellKind = iota
	SnakeBody
	Food
)

func (k CellKind) String() string {
	switch k {
	case SnakeBody:
		return "snake"
	case Food:
		return "food"
	default:
		return "empty"
	}
}

// Snapshot 描述某一时刻的游戏状态，只读副本。
type Snapshot struct {
	Snake     []Cell    `json:"snake"`     // 蛇身，蛇头在前
	Food      Cell      `json:"food"`      // 食物位置
	Direction Direction `json:"direction"` // 当前方向
	Score     int       `json:"score"`     // 分数
	GameOver  bool      `json:"game_over"` // 游戏结束
	GridSize  int       `json:"grid_size"` // 地图边长
}

// KindAt classifies the cell at (x, y). The snake is painted over food when
// both share a cell.
func (s Snapshot) KindAt(x, y int) CellKind {
	for _, c := range s.Snake {
		if c.X == x && c.Y == y {
			return SnakeBody
		}
	}
	if s.Food.X == x && s.Food.Y == y {
		return Food
	}
	return Empty
}

// Head returns the first snake cell.
func (s Snapshot) Head() Cell {
	if len(s.Snake) == 0 {
		return Cell{}
	}
	return s.Snake[0]
}
