package app

import "truco/internal/domain"

// MinPlayersToStartGame is the number of occupied seats required to deal.
// Truco is always played by two partnerships of two.
const MinPlayersToStartGame = domain.SeatCount
