package ledger

// Default persistence configuration constants.
const defaultBoardFile = "bounty_board.json"

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithBoardFile overrides the data file name inside the store directory.
func WithBoardFile(name string) Option {
	return func(s *FileStore) {
		if name != "" {
			s.boardFile = name
		}
	}
}
