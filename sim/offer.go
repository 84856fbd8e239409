package sim

// Offer pairs a driver with a request for a single accept/reject
// decision. Offers are constructed transiently for each proposed pair
// every tick and never stored.
type Offer struct {
	DriverID  int64
	RequestID int64

	// EstimatedTravelTime is the pickup distance divided by the driver's
	// speed, in ticks.
	EstimatedTravelTime float64

	// EstimatedReward is the payout the engine's reward model attaches to
	// the trip. HasReward is false when no reward is modeled, in which
	// case reward-sensitive behaviours reject the offer.
	EstimatedReward float64
	HasReward       bool
}
