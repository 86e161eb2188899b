package mailer

var labels = map[string]map[string]string{
	"en": {
		"subject_confirmation": "{event} Registration Confirmation",
		"subject_installment":  "{event} Payment Installment {arg} Confirmation",
		"subject_organization": "New {event} Registration: {arg}",

		"greeting":           "Dear",
		"confirmation_intro": "Thank you for registering. Your payment has been received in full and your registration is confirmed.",
		"confirmation_code":  "Confirmation code",
		"confirmation_note":  "Please keep this confirmation code. You will need it to collect your badge at the event.",
		"installment_intro":  "We have received your payment for installment",
		"installment_amount": "Installment amount",
		"installment_note":   "Your registration will be confirmed once all installments have been paid.",
		"continue_payment":   "Pay the next installment",
		"paid_suffix":        "paid",
		"remaining":          "Remaining balance",
		"total":              "Total amount",
		"organization_intro": "A new registration has been fully paid.",
		"contact_intro":      "New message from the contact form",
		"participant_type":   "Participant type",
		"package":            "Package",
		"amount_paid":        "Amount paid",
		"payment_method":     "Payment method",
		"payment_date":       "Payment date",
		"installments":       "Installments",
		"name":               "Name",
		"phone":              "Phone",
		"company":            "Company",
		"sector":             "Sector",
		"address":            "Address",
		"additional_info":    "Additional information",
		"not_provided":       "Not provided",
		"automated":          "This is an automated email, please do not reply.",
	},
	"fr": {
		"subject_confirmation": "Confirmation d'inscription {event}",
		"subject_installment":  "Confirmation de paiement de la tranche {arg} {event}",
		"subject_organization": "Nouvelle inscription {event}: {arg}",

		"greeting":           "Cher(e)",
		"confirmation_intro": "Merci pour votre inscription. Votre paiement a été reçu en totalité et votre inscription est confirmée.",
		"confirmation_code":  "Code de confirmation",
		"confirmation_note":  "Veuillez conserver ce code de confirmation. Il vous sera demandé pour retirer votre badge.",
		"installment_intro":  "Nous avons bien reçu votre paiement pour la tranche",
		"installment_amount": "Montant de la tranche",
		"installment_note":   "Votre inscription sera confirmée une fois toutes les tranches réglées.",
		"continue_payment":   "Payer la tranche suivante",
		"paid_suffix":        "payé",
		"remaining":          "Reste à payer",
		"total":              "Montant total",
		"organization_intro": "Une nouvelle inscription a été entièrement payée.",
		"contact_intro":      "Nouveau message depuis le formulaire de contact",
		"participant_type":   "Type de participant",
		"package":            "Forfait",
		"amount_paid":        "Montant payé",
		"payment_method":     "Mode de paiement",
		"payment_date":       "Date de paiement",
		"installments":       "Tranches",
		"name":               "Nom",
		"phone":              "Téléphone",
		"company":            "Entreprise",
		"sector":             "Secteur",
		"address":            "Adresse",
		"additional_info":    "Informations complémentaires",
		"not_provided":       "Non fourni",
		"automated":          "Ceci est un email automatique, merci de ne pas répondre.",
	},
}
