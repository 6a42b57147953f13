package email

const (
	subjectLeadConfirmationFmt = "Your Details: %s - %s"
	subjectSubscriptionConfirm = "Confirm your subscription to %s"
	subjectWeeklyDigestFmt     = "Top 10 %s This Week - %s"
	subjectWelcomeFallbackFmt  = "Welcome to %s"
)
