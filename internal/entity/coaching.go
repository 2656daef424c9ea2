package entity

import "strings"

const TopicPlaceholder = "{user_topic}"

type RoomKind string

const (
	RoomKindLecture  RoomKind = "lecture"
	RoomKindFeedback RoomKind = "feedback"
)

type CoachingOption struct {
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	Abstract string `json:"abstract"`
	Template string `json:"-"`
}

type Expert struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

var CoachingOptions = []CoachingOption{
	{
		Name:     "Topic Base Lecture",
		Icon:     "/lecture.png",
		Abstract: "/ab1.png",
		Template: "You are a helpful lecture voice assistant delivering structured talks on {user_topic}. Keep responses friendly, clear, and engaging. Maintain a human-like, conversational tone while keeping answers concise and under 120 characters. Ask follow-up questions after each response to engage the learner.",
	},
	{
		Name:     "Mock Interview",
		Icon:     "/interview.png",
		Abstract: "/ab2.png",
		Template: "You are a friendly AI voice interviewer simulating real interview scenarios for {user_topic}. Keep responses clear and concise. Ask structured, industry-relevant questions and provide constructive feedback to help users improve. Ask one question at a time and keep each reply under 120 characters.",
	},
	{
		Name:     "Ques Ans Prep",
		Icon:     "/qa.png",
		Abstract: "/ab3.png",
		Template: "You are a conversational AI voice tutor helping users practice question and answer sessions on {user_topic}. Ask clear, well-structured questions and give short, helpful feedback on each answer. Keep replies under 120 characters.",
	},
	{
		Name:     "Learn Language",
		Icon:     "/language.png",
		Abstract: "/ab4.png",
		Template: "You are a helpful AI voice coach assisting users in learning {user_topic}. Provide pronunciation guidance, vocabulary tips, and interactive mini-lessons. Keep responses friendly, engaging, and under 120 characters.",
	},
	{
		Name:     "Meditation",
		Icon:     "/meditation.png",
		Abstract: "/ab5.png",
		Template: "You are a soothing AI voice guide for meditation on {user_topic}. Lead calm, structured breathing and mindfulness sessions. Speak gently and keep each reply under 120 characters.",
	},
}

var Experts = []Expert{
	{Name: "Joanna", Avatar: "/t1.avif"},
	{Name: "Sallie", Avatar: "/t2.jpg"},
	{Name: "Matthew", Avatar: "/t3.jpg"},
	{Name: "Vyom", Avatar: "/t4.jpg"},
}

func CoachingOptionByName(name string) (CoachingOption, bool) {
	for _, option := range CoachingOptions {
		if option.Name == name {
			return option, true
		}
	}
	return CoachingOption{}, false
}

// Prompt renders the system prompt for a topic. Only the first placeholder is replaced.
func (o CoachingOption) Prompt(topic string) string {
	return strings.Replace(o.Template, TopicPlaceholder, topic, 1)
}

func KindOf(coachingOption string) RoomKind {
	name := strings.ToLower(coachingOption)
	if strings.Contains(name, "interview") || strings.Contains(name, "ques ans") {
		return RoomKindFeedback
	}
	return RoomKindLecture
}

func IsKnownExpert(name string) bool {
	for _, expert := range Experts {
		if strings.EqualFold(expert.Name, name) {
			return true
		}
	}
	return false
}
