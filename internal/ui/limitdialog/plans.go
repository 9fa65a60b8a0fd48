package limitdialog

import "image/color"

// Plan is one upgrade offer shown as a card.
type Plan struct {
	Name        string
	Price       string
	Period      string
	Features    []string
	ButtonColor color.NRGBA
	Crown       bool
}

// DefaultPlans returns the offers shown on the limit dialog.
func DefaultPlans() []Plan {
	return []Plan{
		{
			Name:        "Standard Plan",
			Price:       "10.99",
			Period:      "month",
			Features:    []string{"10,000 clicks per month", "Adjustable button mappings"},
			ButtonColor: color.NRGBA{R: 64, G: 64, B: 64, A: 255},
		},
		{
			Name:        "Premium Plan",
			Price:       "17.99",
			Period:      "month",
			Features:    []string{"Unlimited clicks", "Custom button mappings", "Priority support"},
			ButtonColor: color.NRGBA{R: 0, G: 150, B: 136, A: 255},
			Crown:       true,
		},
	}
}

func (plan Plan) shortName() string {
	const suffix = " Plan"
	if len(plan.Name) > len(suffix) && plan.Name[len(plan.Name)-len(suffix):] == suffix {
		return plan.Name[:len(plan.Name)-len(suffix)]
	}
	return plan.Name
}
