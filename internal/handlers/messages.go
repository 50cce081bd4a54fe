package handlers

const (
	MsgWelcome = "👋 Welcome to Hitched.\n\n" +
		"We introduce you to one person at a time and help you take it slowly. " +
		"Start by telling us about yourself with /profile, or describe yourself in your own words with /about."
	MsgWelcomeBack    = "👋 Welcome back."
	MsgNoMatch        = "You have no connection yet. Try /suggest to see people you might get along with, or /match to invite someone you know."
	MsgSomethingWrong = "😔 Something went wrong on our side. Please try again in a moment."
	MsgRateLimited    = "⏳ You're sending messages quickly. Take a breath and try again in a minute."
	MsgUnknownCommand = "I don't know that command. /help lists what I can do."
	MsgAdminOnly      = "⛔ This command is for administrators."

	MsgHelp = "<b>Getting started</b>\n" +
		"/profile <code>key: value</code> lines, set your profile\n" +
		"/about <i>text</i>, describe yourself and we fill in the rest\n" +
		"/me, see your profile\n\n" +
		"<b>Meeting someone</b>\n" +
		"/suggest, people you might get along with\n" +
		"/pair <i>id</i>, connect with a suggestion\n" +
		"/match, start a connection and get an invite to share\n" +
		"/invite, send the invite for your current connection\n" +
		"/accept <i>token</i>, accept an invite\n" +
		"/dates, see date options · /pick <i>n</i>, choose one\n" +
		"/feedback yes|no <i>notes</i>, after your date\n" +
		"/seconddate, /close, /pause, /resume, /cancel\n" +
		"/evaluate, check compatibility · /status, where you are\n\n" +
		"<b>Support</b>\n" +
		"/coach, /guidance, /reflect continue|pause|end <i>text</i>\n" +
		"/feeling <i>feeling</i> [low|medium|high], /report <i>what happened</i>"

	MsgProfileUsage = "Send your details one per line after /profile, for example:\n\n" +
		"<code>/profile\ngender: female\nage: 29\nlocation: Leeds\nintent: long_term\n" +
		"temperament: calm\ncommunication_style: gentle\nvalues: honesty, family</code>\n\n" +
		"Intents: long_term, marriage, companionship, friendship, hangout, partner_for_event.\n" +
		"Temperaments: calm, energetic, mixed. Communication: direct, gentle, reserved.\n" +
		"Leave a value empty to clear it."
	MsgAboutPrompt    = "Tell me a little about yourself and what you're looking for, in your own words."
	MsgReportPrompt   = "I'm sorry something felt wrong. In a sentence or two, what happened? Only our team sees this."
	MsgSuggestNone    = "No suggestions right now. Completing your profile helps, and new people join all the time."
	MsgInviteShare    = "💌 Your invite is ready. Forward the message below to the person you'd like to meet. It works once and expires %s."
	MsgInviteReceived = "💌 %s accepted your invite. When you're both ready, /dates shows a few gentle options."
	MsgAccepted       = "🤝 You're connected. %s"
	MsgDateScheduled  = "📅 Your date is set: %s"
	MsgPartnerDate    = "📅 %s picked a date: %s"
	MsgSecondDate     = "✨ You both want to meet again."
	MsgPartnerClosed  = "This connection has been closed. Thank you for being intentional."
	MsgCancelled      = "The connection was cancelled. Nothing more is needed from you."
	MsgPartnerCancel  = "The other person has withdrawn from this connection. There is nothing you need to do."
	MsgFeedbackUsage  = "How did it go? Reply with /feedback yes or /feedback no, and optionally a few words."
	MsgFeelingUsage   = "Tell me how you feel, for example <code>/feeling anxious high</code>."
	MsgAcceptUsage    = "Paste the invite you received after /accept."
	MsgPickUsage      = "Choose an option number from /dates, for example <code>/pick 2</code>."
)
